package model

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeMissingField        = "MISSING_FIELD"
	ErrCodeFetchFailure        = "FETCH_FAILURE"
	ErrCodeValidationFailure   = "VALIDATION_FAILURE"
	ErrCodeImportFormat        = "IMPORT_FORMAT_FAILURE"
	ErrCodeNotification        = "NOTIFICATION_FAILURE"
	ErrCodeOrderNotFound       = "ORDER_NOT_FOUND"
	ErrCodeDuplicateOrder      = "DUPLICATE_ORDER"
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodeClaimNotPaid        = "CLAIM_NOT_PAID"
	ErrCodeUnknownConfirmation = "UNKNOWN_CONFIRMATION"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// DomainError carries a stable error code alongside the message. No domain
// error is fatal to the process; every failure degrades to "no state change
// plus a visible message".
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapFetchFailure marks a row-source fetch error. The caller leaves all
// bins untouched and surfaces a transient notice.
func WrapFetchFailure(err error) *DomainError {
	return &DomainError{Code: ErrCodeFetchFailure, Message: "row source fetch failed", Err: err}
}

// WrapNotificationFailure marks an outbound notification error. Order state
// is unchanged and the send is retryable via the same transition.
func WrapNotificationFailure(err error) *DomainError {
	return &DomainError{Code: ErrCodeNotification, Message: "buyer notification failed", Err: err}
}

// WrapImportFailure marks a tabular import error. Partial imports are
// rejected as a whole for the affected sheet.
func WrapImportFailure(err error) *DomainError {
	return &DomainError{Code: ErrCodeImportFormat, Message: "import rejected", Err: err}
}

// Common domain errors
var (
	ErrConfirmationMismatch = NewDomainError(ErrCodeValidationFailure, "Confirmation text does not match the required phrase")
	ErrUnknownConfirmation  = NewDomainError(ErrCodeUnknownConfirmation, "No pending confirmation for this token")
	ErrOrderNotFound        = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrDuplicateOrder       = NewDomainError(ErrCodeDuplicateOrder, "An order with the same student number and timestamp already exists")
	ErrInvalidTransition    = NewDomainError(ErrCodeInvalidTransition, "Action is not allowed from the order's current stage")
	ErrClaimNotPaid         = NewDomainError(ErrCodeClaimNotPaid, "Order must be fully paid before it can be claimed")
	ErrImportFormat         = NewDomainError(ErrCodeImportFormat, "Workbook contains no recognised sheets")
)
