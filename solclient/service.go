package solclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"commonerchain/program"
)

// transactionResult shapes a freshly sent signature for response payloads.
func (c *Client) transactionResult(sig string) TransactionResult {
	return TransactionResult{
		Signature:   sig,
		Status:      StatusPending,
		ExplorerURL: c.GetExplorerURL(sig),
	}
}

// sendInstruction builds, signs and sends a single-instruction transaction
// paid by the signing key.
func (c *Client) sendInstruction(ctx context.Context, signer solana.PrivateKey, instruction solana.Instruction) (string, error) {
	payer := signer.PublicKey()

	latestBlockhash, err := c.RPC.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("failed to get blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		latestBlockhash.Value.Blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if payer.Equals(key) {
			return &signer
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := c.RPC.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig.String(), nil
}

// buildUnsignedTransaction serializes a single-instruction transaction for
// client-side signing.
func (c *Client) buildUnsignedTransaction(ctx context.Context, payer solana.PublicKey, instruction solana.Instruction) (string, error) {
	latestBlockhash, err := c.RPC.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("failed to get blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		latestBlockhash.Value.Blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}

	txBytes, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(txBytes), nil
}

// ListSlot escrows an NFT into a date slot and registers the listing.
func (c *Client) ListSlot(ctx context.Context, holderKey solana.PrivateKey, params ListSlotParams) (*ListSlotResponse, error) {
	holder := holderKey.PublicKey()

	instruction, err := BuildListSlotInstruction(c.ProgramID, holder, params.NFTMint, params.ScheduledDate, params.ReservePrice)
	if err != nil {
		return nil, fmt.Errorf("failed to build instruction: %w", err)
	}

	sig, err := c.sendInstruction(ctx, holderKey, instruction)
	if err != nil {
		return nil, err
	}

	slotPDA, _, _ := program.SlotAddress(c.ProgramID, params.NFTMint, params.ScheduledDate)
	escrowATA, _, _ := program.EscrowTokenAddress(slotPDA, params.NFTMint)

	return &ListSlotResponse{
		SlotPDA:            slotPDA,
		EscrowTokenAccount: escrowATA,
		ScheduledDate:      params.ScheduledDate,
		Transaction:        c.transactionResult(sig),
		Message:            "Slot listed successfully",
	}, nil
}

// ListSlotUnsigned builds the list transaction for wallet-side signing.
func (c *Client) ListSlotUnsigned(ctx context.Context, holder solana.PublicKey, params ListSlotParams) (*ListSlotResponse, error) {
	instruction, err := BuildListSlotInstruction(c.ProgramID, holder, params.NFTMint, params.ScheduledDate, params.ReservePrice)
	if err != nil {
		return nil, fmt.Errorf("failed to build instruction: %w", err)
	}

	unsigned, err := c.buildUnsignedTransaction(ctx, holder, instruction)
	if err != nil {
		return nil, err
	}

	slotPDA, _, _ := program.SlotAddress(c.ProgramID, params.NFTMint, params.ScheduledDate)
	escrowATA, _, _ := program.EscrowTokenAddress(slotPDA, params.NFTMint)

	return &ListSlotResponse{
		SlotPDA:             slotPDA,
		EscrowTokenAccount:  escrowATA,
		ScheduledDate:       params.ScheduledDate,
		UnsignedTransaction: unsigned,
		Message:             "Unsigned transaction created - sign on client side",
	}, nil
}

// CancelSlot withdraws an unconsumed listing and returns the NFT.
func (c *Client) CancelSlot(ctx context.Context, holderKey solana.PrivateKey, nftMint solana.PublicKey, scheduledDate int64) (*CancelSlotResponse, error) {
	instruction, err := BuildCancelSlotInstruction(c.ProgramID, holderKey.PublicKey(), nftMint, scheduledDate)
	if err != nil {
		return nil, fmt.Errorf("failed to build instruction: %w", err)
	}

	sig, err := c.sendInstruction(ctx, holderKey, instruction)
	if err != nil {
		return nil, err
	}

	slotPDA, _, _ := program.SlotAddress(c.ProgramID, nftMint, scheduledDate)
	return &CancelSlotResponse{
		SlotPDA:     slotPDA,
		Transaction: c.transactionResult(sig),
		Message:     "Slot cancelled, NFT returned",
	}, nil
}

// OpenAuction activates a due slot into a live auction. Anyone can pay for
// the crank; the auction id comes from the config counter.
func (c *Client) OpenAuction(ctx context.Context, payerKey solana.PrivateKey, nftMint solana.PublicKey, scheduledDate int64) (*OpenAuctionResponse, error) {
	cfg, err := c.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch config: %w", err)
	}
	auctionID := cfg.NextAuctionID

	instruction, err := BuildOpenAuctionInstruction(c.ProgramID, payerKey.PublicKey(), nftMint, scheduledDate, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to build instruction: %w", err)
	}

	sig, err := c.sendInstruction(ctx, payerKey, instruction)
	if err != nil {
		return nil, err
	}

	auctionPDA, _, _ := program.AuctionAddress(c.ProgramID, auctionID)
	vaultPDA, _, _ := program.BidVaultAddress(c.ProgramID, auctionID)

	return &OpenAuctionResponse{
		AuctionID:   auctionID,
		AuctionPDA:  auctionPDA,
		VaultPDA:    vaultPDA,
		Transaction: c.transactionResult(sig),
		Message:     "Auction opened",
	}, nil
}

// PlaceBid deposits a bid into the auction vault. The previous bidder, if
// any, is refunded inside the same instruction.
func (c *Client) PlaceBid(ctx context.Context, bidderKey solana.PrivateKey, params PlaceBidParams) (*PlaceBidResponse, error) {
	state, err := c.GetAuction(ctx, params.AuctionID)
	if err != nil {
		return nil, err
	}

	// With no standing bid there is nobody to refund; the bidder stands in
	// so the account list keeps its shape.
	prevBidder := bidderKey.PublicKey()
	if standing, ok := state.CurrentBidder.Key(); ok {
		prevBidder = standing
	}

	instruction, err := BuildPlaceBidInstruction(c.ProgramID, bidderKey.PublicKey(), params.AuctionID, prevBidder, params.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to build instruction: %w", err)
	}

	sig, err := c.sendInstruction(ctx, bidderKey, instruction)
	if err != nil {
		return nil, err
	}

	return &PlaceBidResponse{
		AuctionID:      params.AuctionID,
		Amount:         params.Amount,
		PreviousBidder: prevBidder,
		Transaction:    c.transactionResult(sig),
		Message:        "Bid placed",
	}, nil
}

// PlaceBidUnsigned builds the bid transaction for wallet-side signing.
func (c *Client) PlaceBidUnsigned(ctx context.Context, bidder solana.PublicKey, params PlaceBidParams) (*PlaceBidResponse, error) {
	state, err := c.GetAuction(ctx, params.AuctionID)
	if err != nil {
		return nil, err
	}

	prevBidder := bidder
	if standing, ok := state.CurrentBidder.Key(); ok {
		prevBidder = standing
	}

	instruction, err := BuildPlaceBidInstruction(c.ProgramID, bidder, params.AuctionID, prevBidder, params.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to build instruction: %w", err)
	}

	unsigned, err := c.buildUnsignedTransaction(ctx, bidder, instruction)
	if err != nil {
		return nil, err
	}

	return &PlaceBidResponse{
		AuctionID:           params.AuctionID,
		Amount:              params.Amount,
		PreviousBidder:      prevBidder,
		UnsignedTransaction: unsigned,
		Message:             "Unsigned transaction created - sign on client side",
	}, nil
}

// SettleAuction finalizes an ended auction. Permissionless.
func (c *Client) SettleAuction(ctx context.Context, callerKey solana.PrivateKey, auctionID uint64) (*SettleAuctionResponse, error) {
	state, err := c.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	cfg, err := c.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch config: %w", err)
	}

	instruction, err := BuildSettleAuctionInstruction(c.ProgramID, callerKey.PublicKey(), state, cfg.Treasury)
	if err != nil {
		return nil, fmt.Errorf("failed to build instruction: %w", err)
	}

	sig, err := c.sendInstruction(ctx, callerKey, instruction)
	if err != nil {
		return nil, err
	}

	resp := &SettleAuctionResponse{
		AuctionID:   auctionID,
		FinalBid:    state.CurrentBid,
		Transaction: c.transactionResult(sig),
		Message:     "Auction settled",
	}
	if winner, ok := state.CurrentBidder.Key(); ok {
		resp.Winner = winner
	} else {
		resp.Message = "Auction settled with no bids, NFT returned to seller"
	}
	return resp, nil
}

// SendSignedTransaction submits a transaction signed on the client side.
func (c *Client) SendSignedTransaction(ctx context.Context, signedTxBase64 string) (string, error) {
	txBytes, err := base64.StdEncoding.DecodeString(signedTxBase64)
	if err != nil {
		return "", fmt.Errorf("failed to decode transaction: %w", err)
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(txBytes))
	if err != nil {
		return "", fmt.Errorf("failed to unmarshal transaction: %w", err)
	}

	sig, err := c.RPC.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig.String(), nil
}

// SignatureStatus reports the coarse status of a submitted transaction:
// pending, confirmed or failed.
func (c *Client) SignatureStatus(ctx context.Context, signature string) (string, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return "", fmt.Errorf("invalid signature: %w", err)
	}

	out, err := c.RPC.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return "", fmt.Errorf("failed to fetch signature status: %w", err)
	}
	if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
		return StatusPending, nil
	}

	st := out.Value[0]
	if st.Err != nil {
		return StatusFailed, nil
	}
	if st.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
		st.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
		return StatusConfirmed, nil
	}
	return StatusPending, nil
}

// WaitForConfirmation polls signature status until confirmed or the timeout
// elapses.
func (c *Client) WaitForConfirmation(ctx context.Context, signature string, timeoutSeconds int) error {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return fmt.Errorf("invalid signature: %w", err)
	}

	maxRetries := timeoutSeconds / 2 // Poll every 2 seconds
	for i := 0; i < maxRetries; i++ {
		status, err := c.RPC.GetSignatureStatuses(ctx, true, sig)
		if err == nil && status != nil && len(status.Value) > 0 && status.Value[0] != nil {
			txStatus := status.Value[0]

			if txStatus.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				txStatus.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				if txStatus.Err != nil {
					return fmt.Errorf("transaction failed: %v", txStatus.Err)
				}
				return nil
			}

			if txStatus.Err != nil {
				return fmt.Errorf("transaction failed: %v", txStatus.Err)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	return fmt.Errorf("timeout waiting for confirmation after %d seconds", timeoutSeconds)
}
