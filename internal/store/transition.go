package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/CharlesGabo/MerchandiseTracker/internal/model"
)

// Action is an operator-triggered lifecycle action.
type Action string

const (
	// ActionProcess moves an active order into preparation. An unpaid
	// order is coerced to half-paid: accepted for preparation although
	// not fully settled.
	ActionProcess Action = "process"

	// ActionMarkPaid settles the remaining balance of a half-paid
	// in-process order.
	ActionMarkPaid Action = "mark-paid"

	// ActionClaim releases a fully paid in-process order to the buyer
	// and stamps the claim date.
	ActionClaim Action = "claim"

	// ActionRevert steps an order back one stage: in-process to active
	// (unpaid), history to in-process (half-paid), deleted to active
	// (unpaid).
	ActionRevert Action = "revert"

	// ActionDelete moves an active or history order into the deleted
	// bin, retaining its fields.
	ActionDelete Action = "delete"

	// ActionNotify sends the buyer notification for an in-process order.
	// Repeatable; the bin is unchanged.
	ActionNotify Action = "notify"
)

// ParseAction parses an action name.
func ParseAction(s string) (Action, bool) {
	switch Action(s) {
	case ActionProcess, ActionMarkPaid, ActionClaim, ActionRevert, ActionDelete, ActionNotify:
		return Action(s), true
	}
	return "", false
}

// allowedActions defines which actions are available from each bin.
var allowedActions = map[model.Bin]map[Action]bool{
	model.BinActive:    {ActionProcess: true, ActionDelete: true},
	model.BinInProcess: {ActionMarkPaid: true, ActionClaim: true, ActionRevert: true, ActionNotify: true},
	model.BinHistory:   {ActionRevert: true, ActionDelete: true},
	model.BinDeleted:   {ActionRevert: true},
}

// Confirmation phrases, distinct per action. The operator must type the
// literal phrase before the transition takes effect; this guards against
// misclicks, not against hostile input.
const (
	PhraseProcess     = "Process"
	PhrasePaid        = "Paid"
	PhraseClaimed     = "Claimed"
	PhraseRevert      = "Revert"
	PhraseDelete      = "Delete"
	PhraseNotify      = "Notify Buyer"
	PhraseNotifyAgain = "Notify Again"
)

// pendingTTL bounds how long a requested confirmation stays valid.
const pendingTTL = 5 * time.Minute

// PendingConfirmation is the token returned by RequestTransition. The
// mutation only happens once ConfirmTransition receives the token together
// with the matching phrase.
type PendingConfirmation struct {
	Token     uuid.UUID `json:"token"`
	Bin       model.Bin `json:"bin"`
	Key       string    `json:"key"`
	Action    Action    `json:"action"`
	Phrase    string    `json:"phrase"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TransitionResult reports what a confirmed transition did.
type TransitionResult struct {
	Action Action    `json:"action"`
	Key    string    `json:"key"`
	From   model.Bin `json:"from"`
	To     model.Bin `json:"to"`

	// Applied is false when the target order could not be found anymore,
	// which is a no-op rather than an error: a reconciliation may have
	// moved it between request and confirm.
	Applied bool `json:"applied"`

	// Order is the post-transition state of the order when Applied.
	Order model.Order `json:"order"`
}

// RequestTransition validates that the action is available for the order in
// its current stage and returns a pending confirmation token. No mutation
// happens here.
func (s *Store) RequestTransition(bin model.Bin, key string, action Action) (*PendingConfirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.bins[bin][key]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	if !allowedActions[bin][action] {
		return nil, model.ErrInvalidTransition
	}
	if err := checkGuard(o, action); err != nil {
		return nil, err
	}

	p := &PendingConfirmation{
		Token:     uuid.New(),
		Bin:       bin,
		Key:       key,
		Action:    action,
		Phrase:    phraseFor(o, action),
		ExpiresAt: s.now().Add(pendingTTL),
	}
	s.pending[p.Token] = p

	s.logger.Debug().
		Str("key", key).
		Str("bin", string(bin)).
		Str("action", string(action)).
		Msg("transition requested")

	out := *p
	return &out, nil
}

// ConfirmTransition performs the phrase check and, on success, the mutation.
// A mismatched phrase aborts without consuming the pending confirmation so
// the operator can retype it. A vanished target order is a no-op.
func (s *Store) ConfirmTransition(token uuid.UUID, phrase string) (*TransitionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[token]
	if !ok || s.now().After(p.ExpiresAt) {
		delete(s.pending, token)
		return nil, model.ErrUnknownConfirmation
	}
	if phrase != p.Phrase {
		return nil, model.ErrConfirmationMismatch
	}
	delete(s.pending, token)

	res := &TransitionResult{Action: p.Action, Key: p.Key, From: p.Bin, To: p.Bin}

	o, ok := s.bins[p.Bin][p.Key]
	if !ok {
		s.logger.Warn().
			Str("key", p.Key).
			Str("action", string(p.Action)).
			Msg("transition target no longer in bin, treating as no-op")
		return res, nil
	}

	// Guards are re-checked here: the order's status may have changed
	// between request and confirm.
	if err := checkGuard(o, p.Action); err != nil {
		return nil, err
	}

	switch p.Action {
	case ActionProcess:
		if o.PaymentStatus == model.PaymentUnpaid {
			o.PaymentStatus = model.PaymentHalfPaid
		}
		res.To = s.moveLocked(o, p.Bin, model.BinInProcess)

	case ActionMarkPaid:
		o.PaymentStatus = model.PaymentPaid

	case ActionClaim:
		o.ClaimDate = s.now().Format(model.TimestampLayout)
		res.To = s.moveLocked(o, p.Bin, model.BinHistory)

	case ActionRevert:
		switch p.Bin {
		case model.BinInProcess:
			o.PaymentStatus = model.PaymentUnpaid
			res.To = s.moveLocked(o, p.Bin, model.BinActive)
		case model.BinHistory:
			o.PaymentStatus = model.PaymentHalfPaid
			o.ClaimDate = ""
			res.To = s.moveLocked(o, p.Bin, model.BinInProcess)
		case model.BinDeleted:
			o.PaymentStatus = model.PaymentUnpaid
			o.ClaimDate = ""
			res.To = s.moveLocked(o, p.Bin, model.BinActive)
		}

	case ActionDelete:
		res.To = s.moveLocked(o, p.Bin, model.BinDeleted)

	case ActionNotify:
		// No mutation: the caller sends the notification and marks the
		// order notified only after the send succeeds.
	}

	res.Applied = true
	res.Order = *o

	s.logger.Info().
		Str("key", p.Key).
		Str("action", string(p.Action)).
		Str("from", string(res.From)).
		Str("to", string(res.To)).
		Msg("transition confirmed")

	return res, nil
}

// checkGuard enforces the action's guard condition against the order.
func checkGuard(o *model.Order, action Action) error {
	switch action {
	case ActionClaim:
		if o.PaymentStatus != model.PaymentPaid {
			return model.ErrClaimNotPaid
		}
	case ActionMarkPaid:
		if o.PaymentStatus != model.PaymentHalfPaid {
			return model.ErrInvalidTransition
		}
	}
	return nil
}

// phraseFor returns the confirmation phrase required for the action.
func phraseFor(o *model.Order, action Action) string {
	switch action {
	case ActionProcess:
		return PhraseProcess
	case ActionMarkPaid:
		return PhrasePaid
	case ActionClaim:
		return PhraseClaimed
	case ActionRevert:
		return PhraseRevert
	case ActionDelete:
		return PhraseDelete
	case ActionNotify:
		if o.Notified {
			return PhraseNotifyAgain
		}
		return PhraseNotify
	}
	return ""
}

// moveLocked relocates an order between bins and returns the target bin.
// Callers hold the mutex.
func (s *Store) moveLocked(o *model.Order, from, to model.Bin) model.Bin {
	delete(s.bins[from], o.Key())
	s.bins[to][o.Key()] = o
	return to
}
