package solclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"

	"commonerchain/program"
)

// ListSlotRequest - list an NFT into a date slot
type ListSlotRequest struct {
	HolderAddress string `json:"holder_address"`
	NFTMint       string `json:"nft_mint"`
	ScheduledDate int64  `json:"scheduled_date"` // unix, midnight UTC
	ReservePrice  uint64 `json:"reserve_price"`  // lamports
}

// CancelSlotRequest - withdraw an unconsumed listing
type CancelSlotRequest struct {
	HolderAddress string `json:"holder_address"`
	NFTMint       string `json:"nft_mint"`
	ScheduledDate int64  `json:"scheduled_date"`
}

// PlaceBidRequest - bid on a live auction
type PlaceBidRequest struct {
	BidderAddress string `json:"bidder_address"`
	AuctionID     uint64 `json:"auction_id"`
	Amount        uint64 `json:"amount"` // lamports
}

// SendTransactionRequest - submit a wallet-signed transaction
type SendTransactionRequest struct {
	SignedTransaction string `json:"signed_transaction"`
}

// Response type
type Response struct {
	Success        bool        `json:"success"`
	Message        string      `json:"message,omitempty"`
	UnsignedTx     string      `json:"unsigned_tx,omitempty"`
	TransactionSig string      `json:"transaction_sig,omitempty"`
	ErrorCode      *int        `json:"error_code,omitempty"`
	ProgramLogs    []string    `json:"program_logs,omitempty"`
	Data           interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, resp Response) {
	json.NewEncoder(w).Encode(resp)
}

// HandleListSlot builds an unsigned list transaction for wallet signing.
func (c *Client) HandleListSlot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req ListSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	holder, err := solana.PublicKeyFromBase58(req.HolderAddress)
	if err != nil {
		writeJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid holder address: %v", err)})
		return
	}
	nftMint, err := solana.PublicKeyFromBase58(req.NFTMint)
	if err != nil {
		writeJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid NFT mint: %v", err)})
		return
	}

	if req.ReservePrice == 0 {
		writeJSON(w, Response{Success: false, Message: "reserve_price must be positive"})
		return
	}
	if program.StartOfDay(req.ScheduledDate) != req.ScheduledDate {
		writeJSON(w, Response{Success: false, Message: "scheduled_date must be midnight UTC"})
		return
	}

	resp, err := c.ListSlotUnsigned(r.Context(), holder, ListSlotParams{
		NFTMint:       nftMint,
		ScheduledDate: req.ScheduledDate,
		ReservePrice:  req.ReservePrice,
	})
	if err != nil {
		writeJSON(w, Response{Success: false, Message: err.Error()})
		return
	}

	writeJSON(w, Response{
		Success:    true,
		Message:    fmt.Sprintf("Listing for %s created. Sign on client side.", FormatDate(req.ScheduledDate)),
		UnsignedTx: resp.UnsignedTransaction,
		Data:       resp,
	})
}

// HandleCancelSlot builds an unsigned cancel transaction.
func (c *Client) HandleCancelSlot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req CancelSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	holder, err := solana.PublicKeyFromBase58(req.HolderAddress)
	if err != nil {
		writeJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid holder address: %v", err)})
		return
	}
	nftMint, err := solana.PublicKeyFromBase58(req.NFTMint)
	if err != nil {
		writeJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid NFT mint: %v", err)})
		return
	}

	instruction, err := BuildCancelSlotInstruction(c.ProgramID, holder, nftMint, req.ScheduledDate)
	if err != nil {
		writeJSON(w, Response{Success: false, Message: err.Error()})
		return
	}

	unsignedTx, err := c.buildUnsignedTransaction(r.Context(), holder, instruction)
	if err != nil {
		writeJSON(w, Response{Success: false, Message: err.Error()})
		return
	}

	writeJSON(w, Response{
		Success:    true,
		Message:    "Cancel transaction created. Sign on client side.",
		UnsignedTx: unsignedTx,
	})
}

// HandlePlaceBid builds an unsigned bid transaction.
func (c *Client) HandlePlaceBid(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req PlaceBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	bidder, err := solana.PublicKeyFromBase58(req.BidderAddress)
	if err != nil {
		writeJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid bidder address: %v", err)})
		return
	}

	// Reject obviously-low bids before building the transaction. The
	// program re-checks with the same formula.
	state, err := c.GetAuction(r.Context(), req.AuctionID)
	if err != nil {
		writeJSON(w, Response{Success: false, Message: err.Error()})
		return
	}
	minBid, err := c.MinNextBid(r.Context(), state)
	if err != nil {
		writeJSON(w, Response{Success: false, Message: err.Error()})
		return
	}
	if req.Amount < minBid {
		writeJSON(w, Response{
			Success: false,
			Message: fmt.Sprintf("Bid too low: minimum is %.4f SOL", float64(minBid)/1e9),
		})
		return
	}

	resp, err := c.PlaceBidUnsigned(r.Context(), bidder, PlaceBidParams{
		AuctionID: req.AuctionID,
		Amount:    req.Amount,
	})
	if err != nil {
		writeJSON(w, Response{Success: false, Message: err.Error()})
		return
	}

	writeJSON(w, Response{
		Success:    true,
		Message:    fmt.Sprintf("Bid of %.4f SOL on auction #%d created. Sign on client side.", float64(req.Amount)/1e9, req.AuctionID),
		UnsignedTx: resp.UnsignedTransaction,
	})
}

// HandleSendTransaction submits a wallet-signed transaction.
func (c *Client) HandleSendTransaction(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req SendTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	sig, err := c.SendSignedTransaction(r.Context(), req.SignedTransaction)
	if err != nil {
		response := Response{
			Success:     false,
			Message:     ParseSolanaError(err),
			ErrorCode:   ExtractErrorCode(err),
			ProgramLogs: ExtractLogMessages(err),
		}

		errStr := err.Error()
		if strings.Contains(errStr, "BlockhashNotFound") ||
			strings.Contains(errStr, "Blockhash not found") {
			response.Message = "Transaction expired. Please request a new unsigned transaction and try again."
			response.ErrorCode = nil
		}
		writeJSON(w, response)
		return
	}

	writeJSON(w, Response{
		Success:        true,
		Message:        "Transaction sent successfully",
		TransactionSig: sig,
		Data:           c.transactionResult(sig),
	})
}

// HandleTransactionStatus reports the status of a signature. Query param: sig.
func (c *Client) HandleTransactionStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	signature := r.URL.Query().Get("sig")
	if signature == "" {
		writeJSON(w, Response{Success: false, Message: "sig is required"})
		return
	}

	status, err := c.SignatureStatus(r.Context(), signature)
	if err != nil {
		writeJSON(w, Response{Success: false, Message: err.Error()})
		return
	}

	writeJSON(w, Response{
		Success: true,
		Data: TransactionResult{
			Signature:   signature,
			Status:      status,
			ExplorerURL: c.GetExplorerURL(signature),
		},
	})
}

// HandleCurrentAuction returns the live auction for an NFT mint, or the last
// settled one. Query param: mint.
func (c *Client) HandleCurrentAuction(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	nftMint, err := solana.PublicKeyFromBase58(r.URL.Query().Get("mint"))
	if err != nil {
		writeJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid mint: %v", err)})
		return
	}

	keyed, err := c.FindAuctionByMint(r.Context(), nftMint)
	if err != nil {
		writeJSON(w, Response{Success: false, Message: err.Error()})
		return
	}
	if keyed == nil {
		writeJSON(w, Response{Success: false, Message: "No auction found for mint"})
		return
	}

	info := c.auctionInfo(r.Context(), keyed)
	writeJSON(w, Response{Success: true, Data: info})
}

// HandleAuction returns one auction by id. Query param: id.
func (c *Client) HandleAuction(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	auctionID, err := strconv.ParseUint(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		writeJSON(w, Response{Success: false, Message: "Invalid auction id"})
		return
	}

	state, err := c.GetAuction(r.Context(), auctionID)
	if err != nil {
		writeJSON(w, Response{Success: false, Message: err.Error()})
		return
	}

	auctionPDA, _, _ := program.AuctionAddress(c.ProgramID, auctionID)
	info := c.auctionInfo(r.Context(), &KeyedAuction{Pubkey: auctionPDA, State: state})
	writeJSON(w, Response{Success: true, Data: info})
}

// HandleSlots returns all slot registrations.
func (c *Client) HandleSlots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	slots, err := c.FetchSlots(r.Context())
	if err != nil {
		writeJSON(w, Response{Success: false, Message: err.Error()})
		return
	}

	infos := make([]SlotInfo, 0, len(slots))
	for _, s := range slots {
		infos = append(infos, SlotInfo{
			SlotPDA:       s.Pubkey,
			NFTMint:       s.State.NftMint,
			Owner:         s.State.Owner,
			ScheduledDate: s.State.ScheduledDate,
			ReservePrice:  s.State.ReservePrice,
			Consumed:      s.State.Consumed,
		})
	}
	writeJSON(w, Response{Success: true, Data: infos})
}

// HandleUpcomingDates returns the open listing dates in the window.
func (c *Client) HandleUpcomingDates(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	slots, err := c.FetchSlots(r.Context())
	if err != nil {
		writeJSON(w, Response{Success: false, Message: err.Error()})
		return
	}

	taken := make(map[int64]bool, len(slots))
	for _, s := range slots {
		taken[s.State.ScheduledDate] = true
	}

	writeJSON(w, Response{Success: true, Data: UpcomingDates(time.Now(), taken)})
}

// HandleBidHistory returns reconstructed bids for an auction. Query param: id.
func (c *Client) HandleBidHistory(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	auctionID, err := strconv.ParseUint(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		writeJSON(w, Response{Success: false, Message: "Invalid auction id"})
		return
	}

	records, err := c.FetchBidHistory(r.Context(), auctionID, 50)
	if err != nil {
		writeJSON(w, Response{Success: false, Message: err.Error()})
		return
	}
	writeJSON(w, Response{Success: true, Data: records})
}

// HandleFeeTier returns the fee tier a wallet currently qualifies for.
// Query param: wallet.
func (c *Client) HandleFeeTier(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	wallet, err := solana.PublicKeyFromBase58(r.URL.Query().Get("wallet"))
	if err != nil {
		writeJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid wallet: %v", err)})
		return
	}

	balance, err := c.CommonBalance(r.Context(), wallet)
	if err != nil {
		writeJSON(w, Response{Success: false, Message: err.Error()})
		return
	}
	cfg, err := c.GetConfig(r.Context())
	if err != nil {
		writeJSON(w, Response{Success: false, Message: err.Error()})
		return
	}

	writeJSON(w, Response{Success: true, Data: map[string]interface{}{
		"wallet":         wallet.String(),
		"common_balance": balance,
		"fee_bps":        cfg.FeeTierBps(balance),
	}})
}

// auctionInfo shapes a decoded auction for API responses.
func (c *Client) auctionInfo(ctx context.Context, keyed *KeyedAuction) AuctionInfo {
	state := keyed.State

	info := AuctionInfo{
		AuctionID:    state.AuctionID,
		AuctionPDA:   keyed.Pubkey,
		NFTMint:      state.NftMint,
		Seller:       state.Seller,
		ReservePrice: state.ReservePrice,
		CurrentBid:   state.CurrentBid,
		EndTime:      state.EndTime,
		FeeBps:       state.FeeBps,
		Settled:      state.Settled,
		Live:         !state.Settled && time.Now().Unix() < state.EndTime,
	}
	if bidder, ok := state.CurrentBidder.Key(); ok {
		info.CurrentBidder = bidder.String()
	}
	if minBid, err := c.MinNextBid(ctx, state); err == nil {
		info.MinNextBid = minBid
	}
	return info
}
