package program

import (
	"github.com/gagliardetto/solana-go"
)

// Default parameters written by initialize_config unless overridden.
const (
	DefaultBidIncrementBps uint16 = 500 // 5% minimum raise
	DefaultFeeBps          uint16 = 500 // 5% standard tier
	DefaultReducedFeeBps   uint16 = 300 // 3% tier
	DefaultZeroFeeBps      uint16 = 0

	// COMMON balance thresholds for the reduced and zero fee tiers,
	// in base units (COMMON has 6 decimals).
	DefaultReducedFeeThreshold uint64 = 50_000 * 1_000_000
	DefaultZeroFeeThreshold    uint64 = 500_000 * 1_000_000

	// An auction runs for a full day starting at the scheduled
	// day boundary.
	AuctionDurationSecs int64 = 24 * 60 * 60

	SecondsPerDay int64 = 24 * 60 * 60

	BpsDenominator uint64 = 10_000
)

// ProgramConfig - singleton configuration account, PDA ["program-config"].
type ProgramConfig struct {
	Admin               solana.PublicKey
	Treasury            solana.PublicKey
	CommonMint          solana.PublicKey
	BidIncrementBps     uint16
	FeeBps              uint16
	ReducedFeeBps       uint16
	ReducedFeeThreshold uint64
	ZeroFeeThreshold    uint64
	NextAuctionID       uint64
	Bump                uint8
}

// Clone returns a copy callers can mutate freely.
func (c *ProgramConfig) Clone() *ProgramConfig {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// FeeTierBps returns the fee tier for a seller holding commonBalance base
// units of the governance token.
func (c *ProgramConfig) FeeTierBps(commonBalance uint64) uint16 {
	if commonBalance >= c.ZeroFeeThreshold {
		return DefaultZeroFeeBps
	}
	if commonBalance >= c.ReducedFeeThreshold {
		return c.ReducedFeeBps
	}
	return c.FeeBps
}

// SlotRegistration - a holder's commitment to auction one NFT on one future
// date. PDA ["slot", nft_mint, scheduled_date i64-LE]. Serialized size 91.
type SlotRegistration struct {
	NftMint       solana.PublicKey
	Owner         solana.PublicKey
	ScheduledDate int64 // unix seconds, truncated to a UTC day boundary
	ReservePrice  uint64
	Escrowed      bool
	Consumed      bool
	Bump          uint8
}

func (s *SlotRegistration) Clone() *SlotRegistration {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

// AuctionState - the live or settled auction for one NFT.
// PDA ["auction", auction_id u64-LE]. Serialized size is exactly 150 bytes:
// 8 disc + 32 + 32 + 8 + 8 + 8 + 8 + 33 + 2 + 1 + 1 + 8 + 1.
type AuctionState struct {
	NftMint       solana.PublicKey
	Seller        solana.PublicKey
	AuctionID     uint64
	ReservePrice  uint64
	CurrentBid    uint64
	EndTime       int64
	CurrentBidder OptionPubkey
	FeeBps        uint16 // seller tier snapshotted at activation
	Settled       bool
	Bump          uint8
	CreatedAt     int64
	VaultBump     uint8
}

func (a *AuctionState) Clone() *AuctionState {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

// OptionPubkey is the tagged present/absent pubkey used for the current
// bidder. The zero value is None; an all-zero key set via Some is still
// distinguishable from None.
type OptionPubkey struct {
	present bool
	key     solana.PublicKey
}

func SomePubkey(key solana.PublicKey) OptionPubkey {
	return OptionPubkey{present: true, key: key}
}

func NonePubkey() OptionPubkey {
	return OptionPubkey{}
}

func (o OptionPubkey) IsSome() bool { return o.present }

func (o OptionPubkey) IsNone() bool { return !o.present }

// Key returns the wrapped pubkey and whether it is present.
func (o OptionPubkey) Key() (solana.PublicKey, bool) {
	return o.key, o.present
}

// TokenAccount is the slice of SPL token account state the program reads:
// mint, owner and amount. NFTs are amount 1 with 0 decimals.
type TokenAccount struct {
	Mint     solana.PublicKey
	Owner    solana.PublicKey
	Amount   uint64
	Decimals uint8
}

func (t *TokenAccount) Clone() *TokenAccount {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}

// MinNextBid computes the minimum acceptable next bid. This is a public
// contract mirrored off-chain: the first bid must meet the reserve, every
// later bid must exceed the standing bid by the increment, rounded up.
func MinNextBid(reservePrice, currentBid uint64, incrementBps uint16) (uint64, error) {
	if currentBid == 0 {
		return reservePrice, nil
	}
	raise, err := mulDivCeil(currentBid, uint64(incrementBps), BpsDenominator)
	if err != nil {
		return 0, err
	}
	min := currentBid + raise
	if min < currentBid {
		return 0, ErrMathOverflow
	}
	return min, nil
}

// FeeAmount computes the treasury fee on a winning bid, rounded down.
func FeeAmount(bid uint64, feeBps uint16) (uint64, error) {
	return mulDivFloor(bid, uint64(feeBps), BpsDenominator)
}

func mulDivFloor(a, b, den uint64) (uint64, error) {
	if b != 0 && a > ^uint64(0)/b {
		return 0, ErrMathOverflow
	}
	return a * b / den, nil
}

func mulDivCeil(a, b, den uint64) (uint64, error) {
	if b != 0 && a > ^uint64(0)/b {
		return 0, ErrMathOverflow
	}
	prod := a * b
	if prod > ^uint64(0)-(den-1) {
		return 0, ErrMathOverflow
	}
	return (prod + den - 1) / den, nil
}

// StartOfDay truncates a unix timestamp to its UTC day boundary.
func StartOfDay(unix int64) int64 {
	if unix < 0 {
		return unix - (SecondsPerDay+unix%SecondsPerDay)%SecondsPerDay
	}
	return unix - unix%SecondsPerDay
}
