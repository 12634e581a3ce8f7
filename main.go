package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"commonerchain/indexer"
	"commonerchain/observability/logging"
	"commonerchain/solclient"
)

func main() {
	logger := logging.Setup("auction-api", os.Getenv("ENV"))

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

	dsn := os.Getenv("INDEXER_DB")
	if dsn == "" {
		dsn = "auction-index.db"
	}
	store, err := indexer.OpenStore(dsn, solclient.ProgramIDBase58)
	if err != nil {
		logger.Error("indexer store init failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	syncer := indexer.NewSyncer(client, store, logger, 30*time.Second)
	go syncer.Run(ctx)

	// Listing routes
	http.HandleFunc("/api/v1/slot/list", client.HandleListSlot)
	http.HandleFunc("/api/v1/slot/cancel", client.HandleCancelSlot)
	http.HandleFunc("/api/v1/slots", client.HandleSlots)
	http.HandleFunc("/api/v1/slots/dates", client.HandleUpcomingDates)

	// Auction routes
	http.HandleFunc("/api/v1/auction", client.HandleAuction)
	http.HandleFunc("/api/v1/auction/current", client.HandleCurrentAuction)
	http.HandleFunc("/api/v1/auction/bid", client.HandlePlaceBid)
	http.HandleFunc("/api/v1/auction/bids", client.HandleBidHistory)

	// Wallet routes
	http.HandleFunc("/api/v1/wallet/fee-tier", client.HandleFeeTier)
	http.HandleFunc("/api/v1/transaction/send", client.HandleSendTransaction)
	http.HandleFunc("/api/v1/transaction/status", client.HandleTransactionStatus)

	// Ops endpoints
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("server starting", "port", port, "network", network)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
