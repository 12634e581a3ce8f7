package program

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Serialized account sizes including the 8-byte discriminator. Off-chain
// consumers filter getProgramAccounts by these exact sizes, so they are part
// of the public contract.
const (
	ConfigAccountSize  = 8 + 32 + 32 + 32 + 2 + 2 + 2 + 8 + 8 + 8 + 1   // 135
	SlotAccountSize    = 8 + 32 + 32 + 8 + 8 + 1 + 1 + 1                // 91
	AuctionAccountSize = 8 + 32 + 32 + 8 + 8 + 8 + 8 + 33 + 2 + 1 + 1 + 8 + 1 // 150
)

// Offset of nft_mint inside AuctionState, used by memcmp filters.
const AuctionMintOffset = 8

// AccountDiscriminator returns the 8-byte Anchor account discriminator,
// sha256("account:<Name>")[:8].
func AccountDiscriminator(name string) [8]byte {
	hash := sha256.Sum256([]byte("account:" + name))
	var disc [8]byte
	copy(disc[:], hash[:8])
	return disc
}

var (
	ConfigDiscriminator  = AccountDiscriminator("ProgramConfig")
	SlotDiscriminator    = AccountDiscriminator("SlotRegistration")
	AuctionDiscriminator = AccountDiscriminator("AuctionState")
)

type accountWriter struct {
	buf []byte
	off int
}

func newAccountWriter(size int, disc [8]byte) *accountWriter {
	w := &accountWriter{buf: make([]byte, size)}
	copy(w.buf, disc[:])
	w.off = 8
	return w
}

func (w *accountWriter) pubkey(k solana.PublicKey) {
	copy(w.buf[w.off:w.off+32], k.Bytes())
	w.off += 32
}

func (w *accountWriter) u64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[w.off:w.off+8], v)
	w.off += 8
}

func (w *accountWriter) i64(v int64) { w.u64(uint64(v)) }

func (w *accountWriter) u16(v uint16) {
	binary.LittleEndian.PutUint16(w.buf[w.off:w.off+2], v)
	w.off += 2
}

func (w *accountWriter) u8(v uint8) {
	w.buf[w.off] = v
	w.off++
}

func (w *accountWriter) boolean(v bool) {
	if v {
		w.buf[w.off] = 1
	}
	w.off++
}

func (w *accountWriter) optionPubkey(o OptionPubkey) {
	if key, ok := o.Key(); ok {
		w.buf[w.off] = 1
		copy(w.buf[w.off+1:w.off+33], key.Bytes())
	}
	w.off += 33
}

// EncodeConfig serializes a ProgramConfig account image.
func EncodeConfig(c *ProgramConfig) []byte {
	w := newAccountWriter(ConfigAccountSize, ConfigDiscriminator)
	w.pubkey(c.Admin)
	w.pubkey(c.Treasury)
	w.pubkey(c.CommonMint)
	w.u16(c.BidIncrementBps)
	w.u16(c.FeeBps)
	w.u16(c.ReducedFeeBps)
	w.u64(c.ReducedFeeThreshold)
	w.u64(c.ZeroFeeThreshold)
	w.u64(c.NextAuctionID)
	w.u8(c.Bump)
	return w.buf
}

// DecodeConfig parses a ProgramConfig account image.
func DecodeConfig(data []byte) (*ProgramConfig, error) {
	if err := checkAccount(data, ConfigAccountSize, ConfigDiscriminator, "ProgramConfig"); err != nil {
		return nil, err
	}
	off := 8
	cfg := &ProgramConfig{}
	cfg.Admin = solana.PublicKeyFromBytes(data[off : off+32])
	off += 32
	cfg.Treasury = solana.PublicKeyFromBytes(data[off : off+32])
	off += 32
	cfg.CommonMint = solana.PublicKeyFromBytes(data[off : off+32])
	off += 32
	cfg.BidIncrementBps = binary.LittleEndian.Uint16(data[off : off+2])
	off += 2
	cfg.FeeBps = binary.LittleEndian.Uint16(data[off : off+2])
	off += 2
	cfg.ReducedFeeBps = binary.LittleEndian.Uint16(data[off : off+2])
	off += 2
	cfg.ReducedFeeThreshold = binary.LittleEndian.Uint64(data[off : off+8])
	off += 8
	cfg.ZeroFeeThreshold = binary.LittleEndian.Uint64(data[off : off+8])
	off += 8
	cfg.NextAuctionID = binary.LittleEndian.Uint64(data[off : off+8])
	off += 8
	cfg.Bump = data[off]
	return cfg, nil
}

// EncodeSlot serializes a SlotRegistration account image (91 bytes).
func EncodeSlot(s *SlotRegistration) []byte {
	w := newAccountWriter(SlotAccountSize, SlotDiscriminator)
	w.pubkey(s.NftMint)
	w.pubkey(s.Owner)
	w.i64(s.ScheduledDate)
	w.u64(s.ReservePrice)
	w.boolean(s.Escrowed)
	w.boolean(s.Consumed)
	w.u8(s.Bump)
	return w.buf
}

// DecodeSlot parses a SlotRegistration account image.
func DecodeSlot(data []byte) (*SlotRegistration, error) {
	if err := checkAccount(data, SlotAccountSize, SlotDiscriminator, "SlotRegistration"); err != nil {
		return nil, err
	}
	off := 8
	s := &SlotRegistration{}
	s.NftMint = solana.PublicKeyFromBytes(data[off : off+32])
	off += 32
	s.Owner = solana.PublicKeyFromBytes(data[off : off+32])
	off += 32
	s.ScheduledDate = int64(binary.LittleEndian.Uint64(data[off : off+8]))
	off += 8
	s.ReservePrice = binary.LittleEndian.Uint64(data[off : off+8])
	off += 8
	s.Escrowed = data[off] != 0
	off++
	s.Consumed = data[off] != 0
	off++
	s.Bump = data[off]
	return s, nil
}

// EncodeAuction serializes an AuctionState account image (exactly 150 bytes).
func EncodeAuction(a *AuctionState) []byte {
	w := newAccountWriter(AuctionAccountSize, AuctionDiscriminator)
	w.pubkey(a.NftMint)
	w.pubkey(a.Seller)
	w.u64(a.AuctionID)
	w.u64(a.ReservePrice)
	w.u64(a.CurrentBid)
	w.i64(a.EndTime)
	w.optionPubkey(a.CurrentBidder)
	w.u16(a.FeeBps)
	w.boolean(a.Settled)
	w.u8(a.Bump)
	w.i64(a.CreatedAt)
	w.u8(a.VaultBump)
	return w.buf
}

// DecodeAuction parses an AuctionState account image.
func DecodeAuction(data []byte) (*AuctionState, error) {
	if err := checkAccount(data, AuctionAccountSize, AuctionDiscriminator, "AuctionState"); err != nil {
		return nil, err
	}
	off := 8
	a := &AuctionState{}
	a.NftMint = solana.PublicKeyFromBytes(data[off : off+32])
	off += 32
	a.Seller = solana.PublicKeyFromBytes(data[off : off+32])
	off += 32
	a.AuctionID = binary.LittleEndian.Uint64(data[off : off+8])
	off += 8
	a.ReservePrice = binary.LittleEndian.Uint64(data[off : off+8])
	off += 8
	a.CurrentBid = binary.LittleEndian.Uint64(data[off : off+8])
	off += 8
	a.EndTime = int64(binary.LittleEndian.Uint64(data[off : off+8]))
	off += 8
	if data[off] != 0 {
		a.CurrentBidder = SomePubkey(solana.PublicKeyFromBytes(data[off+1 : off+33]))
	} else {
		a.CurrentBidder = NonePubkey()
	}
	off += 33
	a.FeeBps = binary.LittleEndian.Uint16(data[off : off+2])
	off += 2
	a.Settled = data[off] != 0
	off++
	a.Bump = data[off]
	off++
	a.CreatedAt = int64(binary.LittleEndian.Uint64(data[off : off+8]))
	off += 8
	a.VaultBump = data[off]
	return a, nil
}

func checkAccount(data []byte, size int, disc [8]byte, name string) error {
	if len(data) != size {
		return fmt.Errorf("invalid %s data length: %d", name, len(data))
	}
	for i, b := range disc {
		if data[i] != b {
			return fmt.Errorf("invalid %s discriminator", name)
		}
	}
	return nil
}
