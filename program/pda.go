package program

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// PDA seeds. These are part of the program's public addressing contract and
// are mirrored by every off-chain consumer.
var (
	SeedProgramConfig = []byte("program-config")
	SeedSlot          = []byte("slot")
	SeedAuction       = []byte("auction")
	SeedBidVault      = []byte("bid-vault")
)

func u64LE(v uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return buf
}

func i64LE(v int64) []byte {
	return u64LE(uint64(v))
}

// ConfigAddress derives the singleton config PDA.
func ConfigAddress(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{SeedProgramConfig}, programID)
}

// SlotAddress derives the slot registration PDA for one (mint, date) pair.
// PDA uniqueness is what enforces the one-slot-per-mint-per-date invariant.
func SlotAddress(programID, nftMint solana.PublicKey, scheduledDate int64) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{SeedSlot, nftMint.Bytes(), i64LE(scheduledDate)},
		programID,
	)
}

// AuctionAddress derives the auction state PDA for an auction id.
func AuctionAddress(programID solana.PublicKey, auctionID uint64) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{SeedAuction, u64LE(auctionID)},
		programID,
	)
}

// BidVaultAddress derives the lamport vault PDA for an auction id.
func BidVaultAddress(programID solana.PublicKey, auctionID uint64) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{SeedBidVault, u64LE(auctionID)},
		programID,
	)
}

// EscrowTokenAddress derives the associated token account holding the NFT for
// a slot or auction PDA.
func EscrowTokenAddress(ownerPDA, nftMint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindAssociatedTokenAddress(ownerPDA, nftMint)
}
