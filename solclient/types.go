package solclient

import (
	"github.com/gagliardetto/solana-go"
)

// Transaction status constants
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
)

// TransactionResult - generic result for a submitted transaction
type TransactionResult struct {
	Signature   string `json:"signature"`
	Status      string `json:"status"`
	ExplorerURL string `json:"explorer_url"`
}

// ListSlotParams - parameters for listing an NFT into a date slot
type ListSlotParams struct {
	NFTMint       solana.PublicKey `json:"nft_mint"`
	ScheduledDate int64            `json:"scheduled_date"`
	ReservePrice  uint64           `json:"reserve_price"`
}

// ListSlotResponse - response after listing a slot
type ListSlotResponse struct {
	SlotPDA             solana.PublicKey  `json:"slot_pda"`
	EscrowTokenAccount  solana.PublicKey  `json:"escrow_token_account"`
	ScheduledDate       int64             `json:"scheduled_date"`
	Transaction         TransactionResult `json:"transaction,omitempty"`
	UnsignedTransaction string            `json:"unsigned_transaction,omitempty"`
	Message             string            `json:"message"`
}

// OpenAuctionResponse - response after activating a slot into an auction
type OpenAuctionResponse struct {
	AuctionID   uint64            `json:"auction_id"`
	AuctionPDA  solana.PublicKey  `json:"auction_pda"`
	VaultPDA    solana.PublicKey  `json:"vault_pda"`
	Transaction TransactionResult `json:"transaction"`
	Message     string            `json:"message"`
}

// PlaceBidParams - parameters for bidding on a live auction
type PlaceBidParams struct {
	AuctionID uint64 `json:"auction_id"`
	Amount    uint64 `json:"amount"` // lamports
}

// PlaceBidResponse - response after placing a bid
type PlaceBidResponse struct {
	AuctionID           uint64            `json:"auction_id"`
	Amount              uint64            `json:"amount"`
	PreviousBidder      solana.PublicKey  `json:"previous_bidder,omitempty"`
	Transaction         TransactionResult `json:"transaction,omitempty"`
	UnsignedTransaction string            `json:"unsigned_transaction,omitempty"`
	Message             string            `json:"message"`
}

// SettleAuctionResponse - response after settling an ended auction
type SettleAuctionResponse struct {
	AuctionID   uint64            `json:"auction_id"`
	Winner      solana.PublicKey  `json:"winner,omitempty"`
	FinalBid    uint64            `json:"final_bid"`
	Transaction TransactionResult `json:"transaction"`
	Message     string            `json:"message"`
}

// CancelSlotResponse - response after cancelling an unconsumed slot
type CancelSlotResponse struct {
	SlotPDA     solana.PublicKey  `json:"slot_pda"`
	Transaction TransactionResult `json:"transaction"`
	Message     string            `json:"message"`
}

// AuctionInfo - decoded auction enriched with client-side derived fields,
// shaped for the HTTP layer
type AuctionInfo struct {
	AuctionID     uint64           `json:"auction_id"`
	AuctionPDA    solana.PublicKey `json:"auction_pda"`
	NFTMint       solana.PublicKey `json:"nft_mint"`
	Seller        solana.PublicKey `json:"seller"`
	ReservePrice  uint64           `json:"reserve_price"`
	CurrentBid    uint64           `json:"current_bid"`
	CurrentBidder string           `json:"current_bidder,omitempty"`
	MinNextBid    uint64           `json:"min_next_bid"`
	EndTime       int64            `json:"end_time"`
	FeeBps        uint16           `json:"fee_bps"`
	Settled       bool             `json:"settled"`
	Live          bool             `json:"live"`
}

// SlotInfo - decoded slot registration shaped for the HTTP layer
type SlotInfo struct {
	SlotPDA       solana.PublicKey `json:"slot_pda"`
	NFTMint       solana.PublicKey `json:"nft_mint"`
	Owner         solana.PublicKey `json:"owner"`
	ScheduledDate int64            `json:"scheduled_date"`
	ReservePrice  uint64           `json:"reserve_price"`
	Consumed      bool             `json:"consumed"`
}

// BidRecord - a historical bid reconstructed from vault balance changes
type BidRecord struct {
	Bidder    string `json:"bidder"`
	Amount    uint64 `json:"amount"`
	Signature string `json:"signature"`
	BlockTime int64  `json:"block_time"`
}
