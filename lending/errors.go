package lending

import "errors"

// Business rule errors returned by the engine. Each one is a distinct,
// recoverable, caller-visible kind; none of them indicate a storage failure.
// Callers match with errors.Is - the wrapped message carries the ids and
// counters needed to render an actionable message.
var (
	// ErrPatronNotFound is returned when no patron exists for the given id.
	ErrPatronNotFound = errors.New("patron not found")

	// ErrItemNotFound is returned when no catalog item exists for the given id.
	ErrItemNotFound = errors.New("catalog item not found")

	// ErrLoanNotFound is returned when no loan exists for the given id.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrMemberNotActive is returned when the patron has been deactivated.
	ErrMemberNotActive = errors.New("member is not active")

	// ErrMembershipExpired is returned when the patron's membership has lapsed.
	ErrMembershipExpired = errors.New("membership has expired")

	// ErrItemRetired is returned when the catalog item was soft-deleted.
	ErrItemRetired = errors.New("catalog item is retired")

	// ErrNotAvailable is returned when no copies of the item are free.
	ErrNotAvailable = errors.New("no copies available")

	// ErrBorrowLimitReached is returned when the patron already has the maximum
	// number of concurrently active loans.
	ErrBorrowLimitReached = errors.New("borrow limit reached")

	// ErrLoanNotActive is returned when an operation is attempted on a loan
	// that is already in a terminal state.
	ErrLoanNotActive = errors.New("loan is not active")

	// ErrRenewalLimitExceeded is returned when the loan has already been
	// renewed the maximum number of times.
	ErrRenewalLimitExceeded = errors.New("renewal limit exceeded")

	// ErrInventoryOverflow is returned when a return would push the available
	// copies of an item above its total copies. It indicates a prior
	// consistency bug, not a normal business condition.
	ErrInventoryOverflow = errors.New("inventory overflow")
)

// Validation errors for entity construction.
var (
	ErrEmptyCatalogCode        = errors.New("catalog code must not be empty")
	ErrNegativeTotalCopies     = errors.New("total copies must not be negative")
	ErrEmptyMembershipCode     = errors.New("membership code must not be empty")
	ErrEmptyContactAddress     = errors.New("contact address must not be empty")
	ErrInvalidMembershipExpiry = errors.New("membership expiry must be after enrollment")
	ErrInvalidMaxItems         = errors.New("max items allowed must be positive")
	ErrInvalidDueDate          = errors.New("due date must be after borrow date")
	ErrInvalidReturnDate       = errors.New("return date must not be before borrow date")
	ErrNegativeFeeAmount       = errors.New("fee amount must not be negative")
	ErrFeePaymentTooLarge      = errors.New("fee payment exceeds outstanding fees")
)
