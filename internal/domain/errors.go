package domain

import "errors"

var (
	// Not-found.
	ErrMarketNotFound = errors.New("market does not exist")

	// Preconditions.
	ErrMarketNotActive      = errors.New("market is not active")
	ErrMarketNotClosed      = errors.New("market is not closed")
	ErrMarketNotProposed    = errors.New("market is not awaiting approval")
	ErrMarketNotReported    = errors.New("market has not been reported on")
	ErrMarketNotResolved    = errors.New("market is not resolved")
	ErrAlreadyReported      = errors.New("market is already reported on")
	ErrNotOracle            = errors.New("reporter is not the designated oracle")
	ErrOutcomeOutOfRange    = errors.New("outcome is out of range")
	ErrDuplicateOutcome     = errors.New("cannot dispute the same outcome as the previous dispute")
	ErrTooManyDisputes      = errors.New("maximum number of disputes reached")
	ErrInvalidCategoryCount = errors.New("category count exceeds the maximum")
	ErrEndTooSoon           = errors.New("market end is not in the future")
	ErrPoolExists           = errors.New("swap pool already exists for this market")
	ErrNotCreator           = errors.New("caller is not the market creator")
	ErrUnauthorized         = errors.New("caller is not authorized")

	// Funds.
	ErrInsufficientFunds  = errors.New("insufficient free balance")
	ErrInsufficientShares = errors.New("insufficient share balance")

	// Invariants. These indicate internal accounting inconsistency, never a
	// user error, and must abort the operation rather than be swallowed.
	ErrInsufficientMarketFunds = errors.New("market account cannot cover payout")
	ErrIDOverflow              = errors.New("market id counter overflow")
)
