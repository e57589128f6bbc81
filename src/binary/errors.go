package binary

import "errors"

// Placement validation failures, in the order they are checked.
var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSafeZone            = errors.New("order placement is closed until the next expiry")
	ErrBarrierRequired     = errors.New("barrier price required and must differ from the current price")
	ErrStrikeRequired      = errors.New("strike price required and must differ from the current price")
	ErrPayoutRequired      = errors.New("payout per point must be positive")
	ErrSideNotAllowed      = errors.New("side not allowed for this order type")
	ErrUnknownDuration     = errors.New("unknown or disabled expiry duration")
	ErrOrderTypeDisabled   = errors.New("order type is not available")
	ErrAmountOutOfRange    = errors.New("amount outside the allowed range")
	ErrPracticeDisabled    = errors.New("practice trading is disabled")
)

// Early exit failures.
var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrCancelWindow         = errors.New("too close to expiry to cancel")
	ErrCashOutWindow        = errors.New("cash out not available for this order yet")
	ErrCancellationDisabled = errors.New("cancellation is disabled")
	ErrCashOutDisabled      = errors.New("cash out is disabled")
	ErrNoPrice              = errors.New("no current price for symbol")
)

var ErrNoSymbol = errors.New("no symbol selected")

// ValidationError is a rejected request that never reached the backend.
type ValidationError struct {
	Reason error
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Reason.Error()
	}
	return e.Reason.Error() + ": " + e.Detail
}

func (e *ValidationError) Unwrap() error { return e.Reason }

func invalid(reason error, detail string) error {
	return &ValidationError{Reason: reason, Detail: detail}
}

// IsValidation reports whether err was raised before any backend call.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
