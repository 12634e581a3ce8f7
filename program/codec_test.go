package program

import (
	"bytes"
	"testing"

	"github.com/gagliardetto/solana-go"
)

// The web client hardcodes this discriminator when scanning program
// accounts; it must never drift.
var publishedSlotDiscriminator = []byte{119, 114, 239, 196, 78, 13, 64, 243}

func TestSlotDiscriminatorMatchesPublished(t *testing.T) {
	if !bytes.Equal(SlotDiscriminator[:], publishedSlotDiscriminator) {
		t.Fatalf("slot discriminator drifted: %v", SlotDiscriminator)
	}
}

func TestAccountSizes(t *testing.T) {
	if SlotAccountSize != 91 {
		t.Fatalf("SlotRegistration size: %d", SlotAccountSize)
	}
	if AuctionAccountSize != 150 {
		t.Fatalf("AuctionState size: %d", AuctionAccountSize)
	}
}

func TestAuctionCodecOffsets(t *testing.T) {
	bidder := newTestKey(0x11)
	a := &AuctionState{
		NftMint:       newTestKey(0x21),
		Seller:        newTestKey(0x22),
		AuctionID:     42,
		ReservePrice:  100_000_000,
		CurrentBid:    105_000_000,
		EndTime:       1_700_086_400,
		CurrentBidder: SomePubkey(bidder),
		FeeBps:        300,
		Settled:       true,
		Bump:          254,
		CreatedAt:     1_700_000_000,
		VaultBump:     253,
	}
	data := EncodeAuction(a)
	if len(data) != AuctionAccountSize {
		t.Fatalf("encoded length: %d", len(data))
	}

	// nft_mint sits at the offset the memcmp filter uses.
	if got := solana.PublicKeyFromBytes(data[AuctionMintOffset : AuctionMintOffset+32]); got != a.NftMint {
		t.Fatalf("mint at offset %d: %s", AuctionMintOffset, got)
	}

	decoded, err := DecodeAuction(data)
	if err != nil {
		t.Fatalf("DecodeAuction: %v", err)
	}
	if *decoded != *a {
		t.Fatalf("roundtrip mismatch:\n got %+v\nwant %+v", decoded, a)
	}
}

func TestAuctionCodecNoneBidder(t *testing.T) {
	a := &AuctionState{
		NftMint:       newTestKey(0x21),
		Seller:        newTestKey(0x22),
		AuctionID:     7,
		ReservePrice:  1,
		CurrentBidder: NonePubkey(),
	}
	decoded, err := DecodeAuction(EncodeAuction(a))
	if err != nil {
		t.Fatalf("DecodeAuction: %v", err)
	}
	if decoded.CurrentBidder.IsSome() {
		t.Fatal("none bidder decoded as some")
	}
	// An all-zero key set explicitly is still Some: the option tag, not a
	// sentinel value, carries presence.
	a.CurrentBidder = SomePubkey(solana.PublicKey{})
	decoded, err = DecodeAuction(EncodeAuction(a))
	if err != nil {
		t.Fatalf("DecodeAuction: %v", err)
	}
	if decoded.CurrentBidder.IsNone() {
		t.Fatal("zero-key some decoded as none")
	}
}

func TestSlotCodecRoundtrip(t *testing.T) {
	s := &SlotRegistration{
		NftMint:       newTestKey(0x21),
		Owner:         newTestKey(0x22),
		ScheduledDate: dayTomorrow,
		ReservePrice:  100_000_000,
		Escrowed:      true,
		Consumed:      false,
		Bump:          255,
	}
	data := EncodeSlot(s)
	if len(data) != SlotAccountSize {
		t.Fatalf("encoded length: %d", len(data))
	}
	decoded, err := DecodeSlot(data)
	if err != nil {
		t.Fatalf("DecodeSlot: %v", err)
	}
	if *decoded != *s {
		t.Fatalf("roundtrip mismatch:\n got %+v\nwant %+v", decoded, s)
	}
}

func TestConfigCodecRoundtrip(t *testing.T) {
	c := &ProgramConfig{
		Admin:               newTestKey(0x01),
		Treasury:            newTestKey(0x02),
		CommonMint:          newTestKey(0x03),
		BidIncrementBps:     500,
		FeeBps:              500,
		ReducedFeeBps:       300,
		ReducedFeeThreshold: DefaultReducedFeeThreshold,
		ZeroFeeThreshold:    DefaultZeroFeeThreshold,
		NextAuctionID:       9,
		Bump:                252,
	}
	decoded, err := DecodeConfig(EncodeConfig(c))
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if *decoded != *c {
		t.Fatalf("roundtrip mismatch:\n got %+v\nwant %+v", decoded, c)
	}
}

func TestDecodeRejectsWrongDiscriminator(t *testing.T) {
	data := EncodeSlot(&SlotRegistration{NftMint: newTestKey(0x21)})
	data[0] ^= 0xFF
	if _, err := DecodeSlot(data); err == nil {
		t.Fatal("corrupted discriminator accepted")
	}
	if _, err := DecodeAuction(data); err == nil {
		t.Fatal("wrong size accepted")
	}
}
