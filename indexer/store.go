package indexer

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists indexed marketplace state in SQLite.
type Store struct {
	db        *gorm.DB
	programID string
}

// OpenStore opens (or creates) the database at dsn and migrates the schema.
// Use "file::memory:?cache=shared" for tests.
func OpenStore(dsn, programID string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{db: db, programID: programID}, nil
}

// rowExists reports whether a record with the given id is already stored.
func (s *Store) rowExists(model interface{}, id string) (bool, error) {
	var count int64
	if err := s.db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpsertSlot inserts or refreshes a slot registration row. Reports whether
// the slot was seen for the first time.
func (s *Store) UpsertSlot(rec SlotRecord) (bool, error) {
	rec.ID = recordID(s.programID, "slot", rec.SlotPDA)
	now := time.Now().UTC()
	rec.FirstSeenAt = now
	rec.UpdatedAt = now

	exists, err := s.rowExists(&SlotRecord{}, rec.ID)
	if err != nil {
		return false, err
	}

	err = s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"consumed", "reserve_price", "updated_at",
		}),
	}).Create(&rec).Error
	return !exists && err == nil, err
}

// UpsertAuction inserts or refreshes an auction row. Reports whether the
// auction was seen for the first time.
func (s *Store) UpsertAuction(rec AuctionRecord) (bool, error) {
	rec.ID = recordID(s.programID, "auction", rec.AuctionPDA)
	now := time.Now().UTC()
	rec.FirstSeenAt = now
	rec.UpdatedAt = now

	exists, err := s.rowExists(&AuctionRecord{}, rec.ID)
	if err != nil {
		return false, err
	}

	err = s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"current_bid", "current_bidder", "settled", "updated_at",
		}),
	}).Create(&rec).Error
	return !exists && err == nil, err
}

// InsertBid records a bid once; re-syncing the same signature is a no-op.
// Reports whether a new row was written.
func (s *Store) InsertBid(row BidRow) (bool, error) {
	row.ID = recordID(s.programID, "bid", row.Signature)
	row.CreatedAt = time.Now().UTC()

	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Auction returns one auction row by its on-chain id.
func (s *Store) Auction(auctionID uint64) (*AuctionRecord, error) {
	var rec AuctionRecord
	if err := s.db.Where("auction_id = ?", auctionID).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// LiveAuctions returns unsettled auctions ending after now, soonest first.
func (s *Store) LiveAuctions(now int64) ([]AuctionRecord, error) {
	var recs []AuctionRecord
	err := s.db.
		Where("settled = ? AND end_time > ?", false, now).
		Order("end_time asc").
		Find(&recs).Error
	return recs, err
}

// SettleableAuctions returns unsettled auctions whose countdown has expired.
func (s *Store) SettleableAuctions(now int64) ([]AuctionRecord, error) {
	var recs []AuctionRecord
	err := s.db.
		Where("settled = ? AND end_time <= ?", false, now).
		Order("end_time asc").
		Find(&recs).Error
	return recs, err
}

// UpcomingSlots returns unconsumed registrations scheduled from a date on.
func (s *Store) UpcomingSlots(fromDate int64) ([]SlotRecord, error) {
	var recs []SlotRecord
	err := s.db.
		Where("consumed = ? AND scheduled_date >= ?", false, fromDate).
		Order("scheduled_date asc").
		Find(&recs).Error
	return recs, err
}

// BidsForAuction returns the recorded bids for an auction, highest first.
func (s *Store) BidsForAuction(auctionID uint64) ([]BidRow, error) {
	var rows []BidRow
	err := s.db.
		Where("auction_id = ?", auctionID).
		Order("amount desc").
		Find(&rows).Error
	return rows, err
}

// SellerHistory returns every auction a wallet has sold through.
func (s *Store) SellerHistory(seller string) ([]AuctionRecord, error) {
	var recs []AuctionRecord
	err := s.db.
		Where("seller = ?", seller).
		Order("end_time desc").
		Find(&recs).Error
	return recs, err
}
