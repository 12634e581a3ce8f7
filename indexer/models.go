package indexer

import (
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"gorm.io/gorm"
)

// SlotRecord mirrors an on-chain slot registration for querying.
type SlotRecord struct {
	ID            string `gorm:"primaryKey"` // keccak(program, "slot", pda)
	SlotPDA       string `gorm:"uniqueIndex"`
	NFTMint       string `gorm:"index"`
	Owner         string `gorm:"index"`
	ScheduledDate int64  `gorm:"index"`
	ReservePrice  uint64
	Consumed      bool
	FirstSeenAt   time.Time
	UpdatedAt     time.Time
}

// AuctionRecord mirrors an on-chain auction account.
type AuctionRecord struct {
	ID            string `gorm:"primaryKey"` // keccak(program, "auction", pda)
	AuctionPDA    string `gorm:"uniqueIndex"`
	AuctionID     uint64 `gorm:"uniqueIndex"`
	NFTMint       string `gorm:"index"`
	Seller        string `gorm:"index"`
	ReservePrice  uint64
	CurrentBid    uint64
	CurrentBidder string
	EndTime       int64 `gorm:"index"`
	FeeBps        uint16
	Settled       bool `gorm:"index"`
	FirstSeenAt   time.Time
	UpdatedAt     time.Time
}

// BidRow is one observed bid on an auction, reconstructed from the vault's
// transaction trail. The signature makes rows idempotent across sync passes.
type BidRow struct {
	ID        string `gorm:"primaryKey"` // keccak(program, "bid", signature)
	AuctionID uint64 `gorm:"index"`
	Bidder    string `gorm:"index"`
	Amount    uint64
	Signature string `gorm:"uniqueIndex"`
	BlockTime int64
	CreatedAt time.Time
}

// AutoMigrate performs all schema migrations for the indexer.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&SlotRecord{},
		&AuctionRecord{},
		&BidRow{},
	)
}

// recordID derives a stable primary key from the program, a record kind and
// the record's chain-side identity.
func recordID(programID, kind, identity string) string {
	return ethcrypto.Keccak256Hash([]byte(programID), []byte(kind), []byte(identity)).Hex()
}
