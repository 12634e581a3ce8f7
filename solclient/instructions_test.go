package solclient

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"commonerchain/program"
)

var testProgramID = solana.MustPublicKeyFromBase58(ProgramIDBase58)

func TestInstructionDiscriminators(t *testing.T) {
	// Anchor derives these as sha256("global:<method>")[:8].
	require.Equal(t, [8]byte{238, 77, 148, 91, 200, 151, 92, 146}, PlaceBidDisc)
	require.Equal(t, [8]byte{206, 123, 215, 156, 84, 78, 37, 118}, ListSlotDisc)
	require.Equal(t, [8]byte{246, 196, 183, 98, 222, 139, 46, 133}, SettleAuctionDisc)
	require.Equal(t, [8]byte{48, 60, 204, 12, 175, 130, 173, 33}, OpenAuctionDisc)
}

func TestListSlotInstructionLayout(t *testing.T) {
	holder := solana.NewWallet().PublicKey()
	nftMint := solana.NewWallet().PublicKey()
	date := int64(1_774_051_200) // a midnight UTC boundary

	ix, err := BuildListSlotInstruction(testProgramID, holder, nftMint, date, 500_000_000)
	require.NoError(t, err)
	require.Equal(t, testProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 8+8+8)
	require.Equal(t, ListSlotDisc[:], data[:8])
	require.Equal(t, uint64(date), binary.LittleEndian.Uint64(data[8:16]))
	require.Equal(t, uint64(500_000_000), binary.LittleEndian.Uint64(data[16:24]))

	accounts := ix.Accounts()
	require.Len(t, accounts, 9)
	require.Equal(t, holder, accounts[0].PublicKey)
	require.True(t, accounts[0].IsSigner)
	require.True(t, accounts[0].IsWritable)

	slot, _, err := program.SlotAddress(testProgramID, nftMint, date)
	require.NoError(t, err)
	require.Equal(t, slot, accounts[5].PublicKey)
	require.True(t, accounts[5].IsWritable)
	require.Equal(t, SystemProgramID, accounts[8].PublicKey)
}

func TestPlaceBidInstructionLayout(t *testing.T) {
	bidder := solana.NewWallet().PublicKey()
	prev := solana.NewWallet().PublicKey()

	ix, err := BuildPlaceBidInstruction(testProgramID, bidder, 7, prev, 105_000_000)
	require.NoError(t, err)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Equal(t, PlaceBidDisc[:], data[:8])
	require.Equal(t, uint64(105_000_000), binary.LittleEndian.Uint64(data[8:16]))

	accounts := ix.Accounts()
	require.Len(t, accounts, 6)
	require.True(t, accounts[0].IsSigner)
	// Previous bidder must be writable so the refund can land.
	require.Equal(t, prev, accounts[4].PublicKey)
	require.True(t, accounts[4].IsWritable)
	require.False(t, accounts[4].IsSigner)
}

func TestSettleInstructionRecipient(t *testing.T) {
	seller := solana.NewWallet().PublicKey()
	winner := solana.NewWallet().PublicKey()
	nftMint := solana.NewWallet().PublicKey()
	treasury := solana.NewWallet().PublicKey()

	withBid := &program.AuctionState{
		NftMint:       nftMint,
		Seller:        seller,
		AuctionID:     3,
		CurrentBid:    1_000_000_000,
		CurrentBidder: program.SomePubkey(winner),
	}
	ix, err := BuildSettleAuctionInstruction(testProgramID, seller, withBid, treasury)
	require.NoError(t, err)

	auction, _, err := program.AuctionAddress(testProgramID, 3)
	require.NoError(t, err)
	winnerATA, _, err := program.EscrowTokenAddress(winner, nftMint)
	require.NoError(t, err)
	require.Equal(t, auction, ix.Accounts()[2].PublicKey)
	require.Equal(t, winnerATA, ix.Accounts()[5].PublicKey)

	// No bids: the NFT goes back to the seller's own token account.
	noBid := &program.AuctionState{NftMint: nftMint, Seller: seller, AuctionID: 4}
	ix, err = BuildSettleAuctionInstruction(testProgramID, seller, noBid, treasury)
	require.NoError(t, err)
	sellerATA, _, err := program.EscrowTokenAddress(seller, nftMint)
	require.NoError(t, err)
	require.Equal(t, sellerATA, ix.Accounts()[5].PublicKey)
}

func TestUpdateConfigOptionEncoding(t *testing.T) {
	admin := solana.NewWallet().PublicKey()
	feeBps := uint16(250)

	ix, err := BuildUpdateConfigInstruction(testProgramID, admin, program.ConfigUpdate{
		FeeBps: &feeBps,
	})
	require.NoError(t, err)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Equal(t, UpdateConfigDisc[:], data[:8])

	// treasury: absent, increment: absent, fee: present(250),
	// reduced fee / thresholds: absent.
	want := []byte{0, 0, 1, 250, 0, 0, 0, 0}
	require.Equal(t, want, data[8:])
}

func TestSlotAddressVariesByMintAndDate(t *testing.T) {
	mintA := solana.NewWallet().PublicKey()
	mintB := solana.NewWallet().PublicKey()

	a1, _, err := program.SlotAddress(testProgramID, mintA, 1_774_051_200)
	require.NoError(t, err)
	a2, _, err := program.SlotAddress(testProgramID, mintA, 1_774_051_200)
	require.NoError(t, err)
	require.Equal(t, a1, a2)

	b, _, err := program.SlotAddress(testProgramID, mintB, 1_774_051_200)
	require.NoError(t, err)
	require.NotEqual(t, a1, b)

	nextDay, _, err := program.SlotAddress(testProgramID, mintA, 1_774_137_600)
	require.NoError(t, err)
	require.NotEqual(t, a1, nextDay)
}

func TestExtractErrorCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "json instruction error",
			err:  errors.New(`rpc error: {"err": {"InstructionError": [0, {"Custom": 6008}]}}`),
			want: 6008,
		},
		{
			name: "anchor log",
			err:  errors.New("Program log: AnchorError. Error Number: 6012. Error Message: auction settled"),
			want: 6012,
		},
		{
			name: "hex custom error",
			err:  errors.New("Transaction simulation failed: custom program error: 0x1779"),
			want: 6009,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code := ExtractErrorCode(tc.err)
			require.NotNil(t, code)
			require.Equal(t, tc.want, *code)
		})
	}

	require.Nil(t, ExtractErrorCode(nil))
	require.Nil(t, ExtractErrorCode(errors.New("connection refused")))
}

func TestProgramErrorResolution(t *testing.T) {
	err := errors.New(`{"err": {"InstructionError": [0, {"Custom": 6008}]}}`)
	perr := ProgramError(err)
	require.NotNil(t, perr)
	require.True(t, errors.Is(perr, program.ErrBidTooLow))

	require.Nil(t, ProgramError(errors.New("timeout")))
}

func TestParseSolanaError(t *testing.T) {
	msg := ParseSolanaError(errors.New("send failed: BlockhashNotFound"))
	require.Contains(t, msg, "expired")

	msg = ParseSolanaError(errors.New(`{"err": {"InstructionError": [0, {"Custom": 6009}]}}`))
	require.Contains(t, msg, "AuctionEnded")

	require.Empty(t, ParseSolanaError(nil))
}

func TestParseTokenAccount(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()

	data := make([]byte, tokenAccountSize)
	copy(data[0:32], mint.Bytes())
	copy(data[32:64], owner.Bytes())
	binary.LittleEndian.PutUint64(data[64:72], 50_000_000_000)

	parsed, err := ParseTokenAccount(data)
	require.NoError(t, err)
	require.Equal(t, mint, parsed.Mint)
	require.Equal(t, owner, parsed.Owner)
	require.Equal(t, uint64(50_000_000_000), parsed.Amount)

	_, err = ParseTokenAccount(data[:100])
	require.Error(t, err)
}
