package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"commonerchain/observability/metrics"
	"commonerchain/solclient"
)

// ChainSource is the slice of the RPC client the syncer reads from.
type ChainSource interface {
	FetchSlots(ctx context.Context) ([]*solclient.KeyedSlot, error)
	FetchAuctions(ctx context.Context) ([]*solclient.KeyedAuction, error)
	FetchBidHistory(ctx context.Context, auctionID uint64, limit int) ([]solclient.BidRecord, error)
}

// Syncer mirrors program accounts into the store on an interval.
type Syncer struct {
	source   ChainSource
	store    *Store
	logger   *slog.Logger
	metrics  *metrics.AuctionMetrics
	interval time.Duration
}

func NewSyncer(source ChainSource, store *Store, logger *slog.Logger, interval time.Duration) *Syncer {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Syncer{
		source:   source,
		store:    store,
		logger:   logger,
		metrics:  metrics.Auction(),
		interval: interval,
	}
}

// Run syncs on the interval until the context is cancelled.
func (s *Syncer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.SyncOnce(ctx); err != nil {
			s.metrics.RecordSyncError()
			s.logger.Error("sync pass failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// SyncOnce mirrors the current chain state into the store.
func (s *Syncer) SyncOnce(ctx context.Context) error {
	start := time.Now()
	defer func() {
		s.metrics.ObserveSyncDuration(time.Since(start).Seconds())
	}()

	if err := s.syncSlots(ctx); err != nil {
		return err
	}
	return s.syncAuctions(ctx)
}

func (s *Syncer) syncSlots(ctx context.Context) error {
	slots, err := s.source.FetchSlots(ctx)
	if err != nil {
		return fmt.Errorf("fetch slots: %w", err)
	}

	for _, slot := range slots {
		rec := SlotRecord{
			SlotPDA:       slot.Pubkey.String(),
			NFTMint:       slot.State.NftMint.String(),
			Owner:         slot.State.Owner.String(),
			ScheduledDate: slot.State.ScheduledDate,
			ReservePrice:  slot.State.ReservePrice,
			Consumed:      slot.State.Consumed,
		}
		firstSeen, err := s.store.UpsertSlot(rec)
		if err != nil {
			return fmt.Errorf("upsert slot %s: %w", rec.SlotPDA, err)
		}
		if firstSeen {
			s.metrics.RecordSlotListed()
		}
	}

	s.logger.Debug("synced slots", "count", len(slots))
	return nil
}

func (s *Syncer) syncAuctions(ctx context.Context) error {
	auctions, err := s.source.FetchAuctions(ctx)
	if err != nil {
		return fmt.Errorf("fetch auctions: %w", err)
	}

	for _, keyed := range auctions {
		state := keyed.State
		rec := AuctionRecord{
			AuctionPDA:   keyed.Pubkey.String(),
			AuctionID:    state.AuctionID,
			NFTMint:      state.NftMint.String(),
			Seller:       state.Seller.String(),
			ReservePrice: state.ReservePrice,
			CurrentBid:   state.CurrentBid,
			EndTime:      state.EndTime,
			FeeBps:       state.FeeBps,
			Settled:      state.Settled,
		}
		if bidder, ok := state.CurrentBidder.Key(); ok {
			rec.CurrentBidder = bidder.String()
		}
		firstSeen, err := s.store.UpsertAuction(rec)
		if err != nil {
			return fmt.Errorf("upsert auction %d: %w", rec.AuctionID, err)
		}
		if firstSeen {
			s.metrics.RecordAuctionOpened()
		}

		if !state.Settled {
			s.metrics.SetCurrentBid(fmt.Sprint(state.AuctionID), state.CurrentBid)
			if err := s.syncBids(ctx, state.AuctionID); err != nil {
				// Bid history is best-effort; the auction row is already
				// current.
				s.logger.Warn("bid history sync failed", "auction_id", state.AuctionID, "error", err)
			}
		}
	}

	s.logger.Debug("synced auctions", "count", len(auctions))
	return nil
}

func (s *Syncer) syncBids(ctx context.Context, auctionID uint64) error {
	records, err := s.source.FetchBidHistory(ctx, auctionID, 50)
	if err != nil {
		return err
	}
	for _, r := range records {
		row := BidRow{
			AuctionID: auctionID,
			Bidder:    r.Bidder,
			Amount:    r.Amount,
			Signature: r.Signature,
			BlockTime: r.BlockTime,
		}
		inserted, err := s.store.InsertBid(row)
		if err != nil {
			return err
		}
		if inserted {
			s.metrics.RecordBid(fmt.Sprint(auctionID))
		}
	}
	return nil
}
