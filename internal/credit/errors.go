package credit

import "errors"

var (
	ErrTransferNotFound    = errors.New("transfer not found")
	ErrAlreadyResolved     = errors.New("transfer already resolved")
	ErrNotPending          = errors.New("transfer is not awaiting approval")
	ErrUnattributed        = errors.New("transfer is not attributed to an account")
	ErrAttributedElsewhere = errors.New("transfer is attributed to another account")
	ErrOutsideLookback     = errors.New("transfer is older than the claim lookback window")
	ErrNotQualifying       = errors.New("transaction is not a qualifying payment")
	ErrInvalidConfig       = errors.New("invalid credit config")
)
