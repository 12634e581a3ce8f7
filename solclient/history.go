package solclient

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"commonerchain/program"
)

// FetchBidHistory reconstructs the bid history of an auction from the bid
// vault's transaction trail. Each successful transaction that raised the
// vault balance is a bid; the vault holds exactly the standing bid, so the
// post-balance is the bid amount and the fee payer is the bidder.
func (c *Client) FetchBidHistory(ctx context.Context, auctionID uint64, limit int) ([]BidRecord, error) {
	vault, _, err := program.BidVaultAddress(c.ProgramID, auctionID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	sigs, err := c.RPC.GetSignaturesForAddressWithOpts(ctx, vault, &rpc.GetSignaturesForAddressOpts{
		Limit: &limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vault signatures: %w", err)
	}

	maxVersion := uint64(0)
	records := make([]BidRecord, 0, len(sigs))
	for _, sigInfo := range sigs {
		if sigInfo.Err != nil {
			continue
		}

		res, err := c.RPC.GetTransaction(ctx, sigInfo.Signature, &rpc.GetTransactionOpts{
			Encoding:                       solana.EncodingBase64,
			MaxSupportedTransactionVersion: &maxVersion,
		})
		if err != nil || res == nil || res.Meta == nil {
			continue
		}

		tx, err := res.Transaction.GetTransaction()
		if err != nil {
			continue
		}

		vaultIdx := -1
		for i, key := range tx.Message.AccountKeys {
			if key.Equals(vault) {
				vaultIdx = i
				break
			}
		}
		if vaultIdx < 0 || vaultIdx >= len(res.Meta.PostBalances) {
			continue
		}

		pre := res.Meta.PreBalances[vaultIdx]
		post := res.Meta.PostBalances[vaultIdx]
		if post <= pre || len(tx.Message.AccountKeys) == 0 {
			// Settlement and refunds drain the vault; only deposits are bids.
			continue
		}

		record := BidRecord{
			Bidder:    tx.Message.AccountKeys[0].String(),
			Amount:    post,
			Signature: sigInfo.Signature.String(),
		}
		if sigInfo.BlockTime != nil {
			record.BlockTime = sigInfo.BlockTime.Time().Unix()
		}
		records = append(records, record)
	}

	return records, nil
}
