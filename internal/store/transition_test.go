package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CharlesGabo/MerchandiseTracker/internal/model"
)

// confirm runs the full request/confirm cycle for an action, typing the
// phrase the pending confirmation asks for.
func confirm(t *testing.T, s *Store, bin model.Bin, key string, action Action) *TransitionResult {
	t.Helper()
	pending, err := s.RequestTransition(bin, key, action)
	require.NoError(t, err)
	res, err := s.ConfirmTransition(pending.Token, pending.Phrase)
	require.NoError(t, err)
	require.True(t, res.Applied)
	return res
}

func TestRequestTransition_Validation(t *testing.T) {
	s := newTestStore(t)
	key := seed(s, model.BinActive, testOrder("S1", "2024-01-01 10:00"))

	tests := []struct {
		name    string
		bin     model.Bin
		key     string
		action  Action
		wantErr error
	}{
		{"unknown key", model.BinActive, "S9|2024-01-01 10:00", ActionProcess, model.ErrOrderNotFound},
		{"claim from active", model.BinActive, key, ActionClaim, model.ErrInvalidTransition},
		{"revert from active", model.BinActive, key, ActionRevert, model.ErrInvalidTransition},
		{"notify from active", model.BinActive, key, ActionNotify, model.ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.RequestTransition(tt.bin, tt.key, tt.action)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRequestTransition_Phrases(t *testing.T) {
	s := newTestStore(t)
	activeKey := seed(s, model.BinActive, testOrder("S1", "2024-01-01 10:00"))

	half := testOrder("S2", "2024-01-02 10:00")
	half.PaymentStatus = model.PaymentHalfPaid
	halfKey := seed(s, model.BinInProcess, half)

	notified := testOrder("S3", "2024-01-03 10:00")
	notified.PaymentStatus = model.PaymentHalfPaid
	notified.Notified = true
	notifiedKey := seed(s, model.BinInProcess, notified)

	tests := []struct {
		name   string
		bin    model.Bin
		key    string
		action Action
		phrase string
	}{
		{"process", model.BinActive, activeKey, ActionProcess, "Process"},
		{"delete", model.BinActive, activeKey, ActionDelete, "Delete"},
		{"mark paid", model.BinInProcess, halfKey, ActionMarkPaid, "Paid"},
		{"revert", model.BinInProcess, halfKey, ActionRevert, "Revert"},
		{"first notify", model.BinInProcess, halfKey, ActionNotify, "Notify Buyer"},
		{"repeat notify", model.BinInProcess, notifiedKey, ActionNotify, "Notify Again"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pending, err := s.RequestTransition(tt.bin, tt.key, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.phrase, pending.Phrase)
		})
	}
}

func TestConfirmTransition_PhraseMismatchKeepsPending(t *testing.T) {
	s := newTestStore(t)
	key := seed(s, model.BinActive, testOrder("S1", "2024-01-01 10:00"))

	pending, err := s.RequestTransition(model.BinActive, key, ActionProcess)
	require.NoError(t, err)

	_, err = s.ConfirmTransition(pending.Token, "process")
	assert.ErrorIs(t, err, model.ErrConfirmationMismatch)

	// The order stayed put and the token is still usable.
	assert.Equal(t, model.BinActive, assertSingleBin(t, s, key))

	res, err := s.ConfirmTransition(pending.Token, "Process")
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, model.BinInProcess, assertSingleBin(t, s, key))
}

func TestConfirmTransition_TokenConsumedOnSuccess(t *testing.T) {
	s := newTestStore(t)
	key := seed(s, model.BinActive, testOrder("S1", "2024-01-01 10:00"))

	pending, err := s.RequestTransition(model.BinActive, key, ActionProcess)
	require.NoError(t, err)

	_, err = s.ConfirmTransition(pending.Token, pending.Phrase)
	require.NoError(t, err)

	_, err = s.ConfirmTransition(pending.Token, pending.Phrase)
	assert.ErrorIs(t, err, model.ErrUnknownConfirmation)
}

func TestConfirmTransition_UnknownAndExpiredTokens(t *testing.T) {
	s := newTestStore(t)
	key := seed(s, model.BinActive, testOrder("S1", "2024-01-01 10:00"))

	_, err := s.ConfirmTransition(uuid.New(), "Process")
	assert.ErrorIs(t, err, model.ErrUnknownConfirmation)

	pending, err := s.RequestTransition(model.BinActive, key, ActionProcess)
	require.NoError(t, err)

	s.now = func() time.Time {
		return pending.ExpiresAt.Add(time.Second)
	}
	_, err = s.ConfirmTransition(pending.Token, pending.Phrase)
	assert.ErrorIs(t, err, model.ErrUnknownConfirmation)
}

func TestConfirmTransition_VanishedOrderIsNoOp(t *testing.T) {
	s := newTestStore(t)
	key := seed(s, model.BinActive, testOrder("S1", "2024-01-01 10:00"))

	pending, err := s.RequestTransition(model.BinActive, key, ActionProcess)
	require.NoError(t, err)

	// A reconciliation or import may move the order before the operator
	// finishes typing.
	s.ReplaceBin(model.BinActive, nil)

	res, err := s.ConfirmTransition(pending.Token, pending.Phrase)
	require.NoError(t, err)
	assert.False(t, res.Applied)
}

func TestProcess_CoercesUnpaidToHalfPaid(t *testing.T) {
	s := newTestStore(t)
	key := seed(s, model.BinActive, testOrder("S1", "2024-01-01 10:00"))

	res := confirm(t, s, model.BinActive, key, ActionProcess)

	assert.Equal(t, model.BinInProcess, res.To)
	assert.Equal(t, model.PaymentHalfPaid, res.Order.PaymentStatus)
}

func TestProcess_PaidOrderKeepsStatus(t *testing.T) {
	s := newTestStore(t)
	paid := testOrder("S1", "2024-01-01 10:00")
	paid.PaymentStatus = model.PaymentPaid
	key := seed(s, model.BinActive, paid)

	res := confirm(t, s, model.BinActive, key, ActionProcess)

	assert.Equal(t, model.PaymentPaid, res.Order.PaymentStatus)
}

func TestClaim_RequiresPaid(t *testing.T) {
	s := newTestStore(t)
	half := testOrder("S1", "2024-01-01 10:00")
	half.PaymentStatus = model.PaymentHalfPaid
	key := seed(s, model.BinInProcess, half)

	_, err := s.RequestTransition(model.BinInProcess, key, ActionClaim)
	assert.ErrorIs(t, err, model.ErrClaimNotPaid)
}

func TestClaim_StampsClaimDate(t *testing.T) {
	s := newTestStore(t)
	paid := testOrder("S1", "2024-01-01 10:00")
	paid.PaymentStatus = model.PaymentPaid
	key := seed(s, model.BinInProcess, paid)

	res := confirm(t, s, model.BinInProcess, key, ActionClaim)

	assert.Equal(t, model.BinHistory, res.To)
	assert.Equal(t, "2024-03-15 14:30", res.Order.ClaimDate)
	assert.Equal(t, model.BinHistory, assertSingleBin(t, s, key))
}

func TestClaim_GuardRecheckedAtConfirm(t *testing.T) {
	s := newTestStore(t)
	paid := testOrder("S1", "2024-01-01 10:00")
	paid.PaymentStatus = model.PaymentPaid
	key := seed(s, model.BinInProcess, paid)

	pending, err := s.RequestTransition(model.BinInProcess, key, ActionClaim)
	require.NoError(t, err)

	// Payment regressed between request and confirm.
	half := paid
	half.PaymentStatus = model.PaymentHalfPaid
	seed(s, model.BinInProcess, half)

	_, err = s.ConfirmTransition(pending.Token, pending.Phrase)
	assert.ErrorIs(t, err, model.ErrClaimNotPaid)
}

func TestMarkPaid(t *testing.T) {
	s := newTestStore(t)
	half := testOrder("S1", "2024-01-01 10:00")
	half.PaymentStatus = model.PaymentHalfPaid
	key := seed(s, model.BinInProcess, half)

	res := confirm(t, s, model.BinInProcess, key, ActionMarkPaid)

	assert.Equal(t, model.PaymentPaid, res.Order.PaymentStatus)
	assert.Equal(t, model.BinInProcess, res.To)
}

func TestMarkPaid_RejectedWhenAlreadyPaid(t *testing.T) {
	s := newTestStore(t)
	paid := testOrder("S1", "2024-01-01 10:00")
	paid.PaymentStatus = model.PaymentPaid
	key := seed(s, model.BinInProcess, paid)

	_, err := s.RequestTransition(model.BinInProcess, key, ActionMarkPaid)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestRevert_Paths(t *testing.T) {
	tests := []struct {
		name       string
		from       model.Bin
		setup      func(o *model.Order)
		wantTo     model.Bin
		wantStatus model.PaymentStatus
	}{
		{
			name:       "in-process to active",
			from:       model.BinInProcess,
			setup:      func(o *model.Order) { o.PaymentStatus = model.PaymentHalfPaid },
			wantTo:     model.BinActive,
			wantStatus: model.PaymentUnpaid,
		},
		{
			name: "history to in-process",
			from: model.BinHistory,
			setup: func(o *model.Order) {
				o.PaymentStatus = model.PaymentPaid
				o.ClaimDate = "2024-02-01 09:00"
			},
			wantTo:     model.BinInProcess,
			wantStatus: model.PaymentHalfPaid,
		},
		{
			name: "deleted to active",
			from: model.BinDeleted,
			setup: func(o *model.Order) {
				o.PaymentStatus = model.PaymentPaid
				o.ClaimDate = "2024-02-01 09:00"
			},
			wantTo:     model.BinActive,
			wantStatus: model.PaymentUnpaid,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			o := testOrder("S1", "2024-01-01 10:00")
			tt.setup(&o)
			key := seed(s, tt.from, o)

			res := confirm(t, s, tt.from, key, ActionRevert)

			assert.Equal(t, tt.wantTo, res.To)
			assert.Equal(t, tt.wantStatus, res.Order.PaymentStatus)
			assert.Empty(t, res.Order.ClaimDate)
			assert.Equal(t, tt.wantTo, assertSingleBin(t, s, key))
		})
	}
}

func TestDelete_RetainsFields(t *testing.T) {
	s := newTestStore(t)
	o := testOrder("S1", "2024-01-01 10:00")
	o.PaymentStatus = model.PaymentPaid
	o.ClaimDate = "2024-02-01 09:00"
	key := seed(s, model.BinHistory, o)

	res := confirm(t, s, model.BinHistory, key, ActionDelete)

	assert.Equal(t, model.BinDeleted, res.To)
	assert.Equal(t, model.PaymentPaid, res.Order.PaymentStatus)
	assert.Equal(t, "2024-02-01 09:00", res.Order.ClaimDate)
}

func TestDeleteThenRevert_ResetsToUnpaid(t *testing.T) {
	s := newTestStore(t)
	o := testOrder("S1", "2024-01-01 10:00")
	o.PaymentStatus = model.PaymentPaid
	key := seed(s, model.BinActive, o)

	confirm(t, s, model.BinActive, key, ActionDelete)
	res := confirm(t, s, model.BinDeleted, key, ActionRevert)

	assert.Equal(t, model.BinActive, res.To)
	assert.Equal(t, model.PaymentUnpaid, res.Order.PaymentStatus)
}

func TestNotify_DoesNotMutate(t *testing.T) {
	s := newTestStore(t)
	half := testOrder("S1", "2024-01-01 10:00")
	half.PaymentStatus = model.PaymentHalfPaid
	key := seed(s, model.BinInProcess, half)

	res := confirm(t, s, model.BinInProcess, key, ActionNotify)

	assert.Equal(t, model.BinInProcess, res.To)
	assert.False(t, res.Order.Notified)

	// The caller flips the flag only after the send succeeds.
	assert.True(t, s.MarkNotified(key))
	o, _ := s.Get(model.BinInProcess, key)
	assert.True(t, o.Notified)
}

func TestFullLifecycle(t *testing.T) {
	s := newTestStore(t)
	key := seed(s, model.BinActive, testOrder("S1", "2024-01-01 10:00"))

	confirm(t, s, model.BinActive, key, ActionProcess)
	confirm(t, s, model.BinInProcess, key, ActionMarkPaid)
	res := confirm(t, s, model.BinInProcess, key, ActionClaim)

	assert.Equal(t, model.BinHistory, res.To)
	assert.Equal(t, model.PaymentPaid, res.Order.PaymentStatus)
	assert.NotEmpty(t, res.Order.ClaimDate)
	assert.Equal(t, model.BinHistory, assertSingleBin(t, s, key))
}
