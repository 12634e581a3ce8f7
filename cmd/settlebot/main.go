package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"

	"commonerchain/observability/logging"
	"commonerchain/observability/metrics"
	"commonerchain/program"
	"commonerchain/solclient"
)

// settlebot scans for auctions whose countdown has expired and fires the
// permissionless settlement instruction for each. Anyone can run it; the
// signing key only pays transaction fees.
func main() {
	logger := logging.Setup("settlebot", os.Getenv("ENV"))

	keyPath := os.Getenv("KEYPAIR_PATH")
	if keyPath == "" {
		logger.Error("KEYPAIR_PATH is required")
		os.Exit(1)
	}
	crankKey, err := solana.PrivateKeyFromSolanaKeygenFile(keyPath)
	if err != nil {
		logger.Error("failed to load keypair", "error", err)
		os.Exit(1)
	}

	rpcURL := os.Getenv("RPC_URL")
	network := os.Getenv("NETWORK")
	if network == "" {
		network = "devnet"
	}
	if rpcURL == "" {
		rpcURL = solclient.RPCURLDevnet
		if network == "mainnet" {
			rpcURL = solclient.RPCURLMainnet
		}
	}
	client, err := solclient.NewClient(rpcURL, network)
	if err != nil {
		logger.Error("client init failed", "error", err)
		os.Exit(1)
	}

	interval := 60 * time.Second
	if v := os.Getenv("SCAN_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			interval = d
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("settlebot started", "crank", crankKey.PublicKey(), "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		settleDue(ctx, client, crankKey, logger)
		select {
		case <-ctx.Done():
			logger.Info("settlebot stopping")
			return
		case <-ticker.C:
		}
	}
}

func settleDue(ctx context.Context, client *solclient.Client, crankKey solana.PrivateKey, logger *slog.Logger) {
	m := metrics.Auction()

	auctions, err := client.FetchAuctions(ctx)
	if err != nil {
		logger.Error("auction scan failed", "error", err)
		return
	}

	now := time.Now().Unix()
	for _, keyed := range auctions {
		state := keyed.State
		if state.Settled || now < state.EndTime {
			continue
		}

		resp, err := client.SettleAuction(ctx, crankKey, state.AuctionID)
		if err != nil {
			// Another crank may have won the race; AlreadySettled is fine.
			if perr := solclient.ProgramError(err); perr != nil &&
				(errors.Is(perr, program.ErrAlreadySettled) || errors.Is(perr, program.ErrAuctionSettled)) {
				m.RecordSettleAttempt("already_settled")
				continue
			}
			m.RecordSettleAttempt("error")
			logger.Warn("settlement failed", "auction_id", state.AuctionID, "error", solclient.ParseSolanaError(err))
			continue
		}

		m.RecordSettleAttempt("ok")
		if state.CurrentBidder.IsSome() {
			m.RecordSettlement("sale")
		} else {
			m.RecordSettlement("no_bids")
		}
		logger.Info("auction settled",
			"auction_id", state.AuctionID,
			"final_bid", resp.FinalBid,
			"signature", resp.Transaction.Signature,
			"explorer", resp.Transaction.ExplorerURL,
		)

		if err := client.WaitForConfirmation(ctx, resp.Transaction.Signature, 60); err != nil {
			logger.Warn("confirmation timeout", "auction_id", state.AuctionID, "error", err)
		}
	}
}
