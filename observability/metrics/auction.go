package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// AuctionMetrics tracks the marketplace surface: listings, bids, settlements
// and the indexer sync loop.
type AuctionMetrics struct {
	slotsListed       prometheus.Counter
	auctionsOpened    prometheus.Counter
	bidsIndexed       *prometheus.CounterVec
	settlements       *prometheus.CounterVec
	settleAttempts    *prometheus.CounterVec
	currentBidLamport *prometheus.GaugeVec
	syncErrors        prometheus.Counter
	syncDuration      prometheus.Histogram
}

var (
	auctionOnce     sync.Once
	auctionRegistry *AuctionMetrics
)

func Auction() *AuctionMetrics {
	auctionOnce.Do(func() {
		auctionRegistry = &AuctionMetrics{
			slotsListed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "auction_slots_listed_total",
				Help: "Count of NFT slot registrations observed.",
			}),
			auctionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "auction_opened_total",
				Help: "Count of slots activated into live auctions.",
			}),
			bidsIndexed: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "auction_bids_indexed_total",
				Help: "Count of bids recorded by the indexer per auction.",
			}, []string{"auction_id"}),
			settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "auction_settlements_total",
				Help: "Count of settlements by outcome (sale or no_bids).",
			}, []string{"outcome"}),
			settleAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "auction_settle_attempts_total",
				Help: "Settlement crank attempts by result.",
			}, []string{"result"}),
			currentBidLamport: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "auction_current_bid_lamports",
				Help: "Standing bid of each live auction in lamports.",
			}, []string{"auction_id"}),
			syncErrors: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "auction_indexer_sync_errors_total",
				Help: "Number of failed indexer sync passes.",
			}),
			syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    "auction_indexer_sync_seconds",
				Help:    "Duration of indexer sync passes.",
				Buckets: prometheus.DefBuckets,
			}),
		}
		prometheus.MustRegister(
			auctionRegistry.slotsListed,
			auctionRegistry.auctionsOpened,
			auctionRegistry.bidsIndexed,
			auctionRegistry.settlements,
			auctionRegistry.settleAttempts,
			auctionRegistry.currentBidLamport,
			auctionRegistry.syncErrors,
			auctionRegistry.syncDuration,
		)
	})
	return auctionRegistry
}

func (m *AuctionMetrics) RecordSlotListed() {
	if m == nil {
		return
	}
	m.slotsListed.Inc()
}

func (m *AuctionMetrics) RecordAuctionOpened() {
	if m == nil {
		return
	}
	m.auctionsOpened.Inc()
}

func (m *AuctionMetrics) RecordBid(auctionID string) {
	if m == nil {
		return
	}
	m.bidsIndexed.WithLabelValues(auctionID).Inc()
}

func (m *AuctionMetrics) RecordSettlement(outcome string) {
	if m == nil {
		return
	}
	m.settlements.WithLabelValues(outcome).Inc()
}

func (m *AuctionMetrics) RecordSettleAttempt(result string) {
	if m == nil {
		return
	}
	m.settleAttempts.WithLabelValues(result).Inc()
}

func (m *AuctionMetrics) SetCurrentBid(auctionID string, lamports uint64) {
	if m == nil {
		return
	}
	m.currentBidLamport.WithLabelValues(auctionID).Set(float64(lamports))
}

func (m *AuctionMetrics) RecordSyncError() {
	if m == nil {
		return
	}
	m.syncErrors.Inc()
}

func (m *AuctionMetrics) ObserveSyncDuration(seconds float64) {
	if m == nil {
		return
	}
	m.syncDuration.Observe(seconds)
}
