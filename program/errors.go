package program

import "fmt"

// Error is a program-defined error code. Codes start at 6000 to match the
// Anchor custom-error numbering the deployed program exposes, so the same
// table drives both the engine and client-side decoding of failed
// transactions.
type Error struct {
	Code uint32
	Name string
	msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.msg)
}

var (
	// Validation errors - client correctable.
	ErrNotTokenOwner       = &Error{6000, "NotTokenOwner", "caller does not own the NFT token account"}
	ErrInvalidTokenAmount  = &Error{6001, "InvalidTokenAmount", "token account must hold exactly 1 unit with 0 decimals"}
	ErrDateInPast          = &Error{6002, "DateInPast", "scheduled date must be a future UTC day"}
	ErrInvalidScheduledDate = &Error{6003, "InvalidScheduledDate", "scheduled date must fall on a UTC day boundary"}

	// State conflicts - race losers, recoverable by reread.
	ErrSlotAlreadyExists   = &Error{6004, "SlotAlreadyExists", "an unconsumed slot already exists for this mint and date"}
	ErrSlotNotEscrowed     = &Error{6005, "SlotNotEscrowed", "NFT has not been escrowed for this slot"}
	ErrSlotAlreadyConsumed = &Error{6006, "SlotAlreadyConsumed", "an auction was already opened from this slot"}
	ErrSlotNotDue          = &Error{6007, "SlotNotDue", "scheduled date has not been reached"}
	ErrBidTooLow           = &Error{6008, "BidTooLow", "bid is below the minimum next bid"}
	ErrAuctionEnded        = &Error{6009, "AuctionEnded", "auction countdown has expired"}
	ErrAuctionSettled      = &Error{6010, "AuctionSettled", "auction has already been settled"}
	ErrAuctionNotEnded     = &Error{6011, "AuctionNotEnded", "auction countdown has not expired yet"}
	ErrAlreadySettled      = &Error{6012, "AlreadySettled", "settlement has already run for this auction"}
	ErrUnauthorized        = &Error{6013, "Unauthorized", "caller is not permitted to perform this instruction"}

	// Fatal - indicate a program bug, not user error.
	ErrMathOverflow         = &Error{6014, "MathOverflow", "arithmetic overflow in fee or increment computation"}
	ErrVaultBalanceMismatch = &Error{6015, "VaultBalanceMismatch", "bid vault balance does not match the recorded bid"}

	ErrConfigAlreadyInitialized = &Error{6016, "ConfigAlreadyInitialized", "program config has already been initialized"}
	ErrInvalidReservePrice      = &Error{6017, "InvalidReservePrice", "reserve price must be greater than zero"}
	ErrSlotStillActive          = &Error{6018, "SlotStillActive", "slot has not been consumed; cancel it instead of closing"}
)

var errorsByCode = map[uint32]*Error{}

func init() {
	for _, e := range []*Error{
		ErrNotTokenOwner, ErrInvalidTokenAmount, ErrDateInPast, ErrInvalidScheduledDate,
		ErrSlotAlreadyExists, ErrSlotNotEscrowed, ErrSlotAlreadyConsumed, ErrSlotNotDue,
		ErrBidTooLow, ErrAuctionEnded, ErrAuctionSettled, ErrAuctionNotEnded,
		ErrAlreadySettled, ErrUnauthorized, ErrMathOverflow, ErrVaultBalanceMismatch,
		ErrConfigAlreadyInitialized, ErrInvalidReservePrice, ErrSlotStillActive,
	} {
		errorsByCode[e.Code] = e
	}
}

// ErrorForCode resolves a custom error code back to its declaration. Returns
// nil for codes this program does not define.
func ErrorForCode(code uint32) *Error {
	return errorsByCode[code]
}
