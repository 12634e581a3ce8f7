package program

import "strconv"

const (
	EventTypeSlotListed     = "auction.slot.listed"
	EventTypeSlotCancelled  = "auction.slot.cancelled"
	EventTypeSlotClosed     = "auction.slot.closed"
	EventTypeAuctionOpened  = "auction.opened"
	EventTypeBidPlaced      = "auction.bid.placed"
	EventTypeBidderRefunded = "auction.bid.refunded"
	EventTypeSettledSale    = "auction.settled.sale"
	EventTypeSettledNoBids  = "auction.settled.no_bids"
)

// Event is the structured payload emitted after a committed instruction.
// Attributes follow the key naming of the program's on-chain logs.
type Event struct {
	Type       string
	Attributes map[string]string
}

// Emitter receives events after a state transition commits. Implementations
// must not assume ordering across auctions, only per auction.
type Emitter interface {
	Emit(evt Event)
}

// NoopEmitter discards every event.
type NoopEmitter struct{}

func (NoopEmitter) Emit(Event) {}

func newSlotEvent(eventType string, s *SlotRegistration) Event {
	attrs := make(map[string]string)
	if s != nil {
		attrs["nftMint"] = s.NftMint.String()
		attrs["owner"] = s.Owner.String()
		attrs["scheduledDate"] = strconv.FormatInt(s.ScheduledDate, 10)
		attrs["reservePrice"] = strconv.FormatUint(s.ReservePrice, 10)
	}
	return Event{Type: eventType, Attributes: attrs}
}

func newAuctionEvent(eventType string, a *AuctionState) Event {
	attrs := make(map[string]string)
	if a != nil {
		attrs["auctionId"] = strconv.FormatUint(a.AuctionID, 10)
		attrs["nftMint"] = a.NftMint.String()
		attrs["seller"] = a.Seller.String()
		attrs["currentBid"] = strconv.FormatUint(a.CurrentBid, 10)
		attrs["endTime"] = strconv.FormatInt(a.EndTime, 10)
		if bidder, ok := a.CurrentBidder.Key(); ok {
			attrs["currentBidder"] = bidder.String()
		}
	}
	return Event{Type: eventType, Attributes: attrs}
}
