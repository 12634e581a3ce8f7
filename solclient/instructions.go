package solclient

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"commonerchain/program"
)

// getDiscriminator derives the 8-byte Anchor instruction discriminator.
func getDiscriminator(name string) [8]byte {
	hash := sha256.Sum256([]byte(name))
	var disc [8]byte
	copy(disc[:], hash[:8])
	return disc
}

var (
	InitializeConfigDisc = getDiscriminator("global:initialize_config")
	UpdateConfigDisc     = getDiscriminator("global:update_config")
	ListSlotDisc         = getDiscriminator("global:list_slot")
	CancelSlotDisc       = getDiscriminator("global:cancel_slot")
	OpenAuctionDisc      = getDiscriminator("global:open_auction")
	CloseSlotDisc        = getDiscriminator("global:close_slot")
	PlaceBidDisc         = getDiscriminator("global:place_bid")
	SettleAuctionDisc    = getDiscriminator("global:settle_auction")
)

func appendU64(data []byte, v uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return append(data, buf...)
}

func appendI64(data []byte, v int64) []byte {
	return appendU64(data, uint64(v))
}

// BuildListSlotInstruction builds list_slot(scheduled_date, reserve_price).
// Account order matches what the deployed program expects from the web
// client: holder, config, nftMint, holderTokenAccount, escrowTokenAccount,
// slot, tokenProgram, associatedTokenProgram, systemProgram.
func BuildListSlotInstruction(
	programID solana.PublicKey,
	holder solana.PublicKey,
	nftMint solana.PublicKey,
	scheduledDate int64,
	reservePrice uint64,
) (solana.Instruction, error) {
	config, _, err := program.ConfigAddress(programID)
	if err != nil {
		return nil, err
	}
	slot, _, err := program.SlotAddress(programID, nftMint, scheduledDate)
	if err != nil {
		return nil, err
	}
	holderTokenAccount, _, err := program.EscrowTokenAddress(holder, nftMint)
	if err != nil {
		return nil, err
	}
	escrowTokenAccount, _, err := program.EscrowTokenAddress(slot, nftMint)
	if err != nil {
		return nil, err
	}

	data := append([]byte{}, ListSlotDisc[:]...)
	data = appendI64(data, scheduledDate)
	data = appendU64(data, reservePrice)

	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(holder).WRITE().SIGNER(),
			solana.Meta(config),
			solana.Meta(nftMint),
			solana.Meta(holderTokenAccount).WRITE(),
			solana.Meta(escrowTokenAccount).WRITE(),
			solana.Meta(slot).WRITE(),
			solana.Meta(TokenProgramID),
			solana.Meta(AssociatedTokenProgID),
			solana.Meta(SystemProgramID),
		},
		data,
	), nil
}

// BuildCancelSlotInstruction builds cancel_slot(scheduled_date) for an
// unconsumed registration.
func BuildCancelSlotInstruction(
	programID solana.PublicKey,
	holder solana.PublicKey,
	nftMint solana.PublicKey,
	scheduledDate int64,
) (solana.Instruction, error) {
	slot, _, err := program.SlotAddress(programID, nftMint, scheduledDate)
	if err != nil {
		return nil, err
	}
	holderTokenAccount, _, err := program.EscrowTokenAddress(holder, nftMint)
	if err != nil {
		return nil, err
	}
	escrowTokenAccount, _, err := program.EscrowTokenAddress(slot, nftMint)
	if err != nil {
		return nil, err
	}

	data := append([]byte{}, CancelSlotDisc[:]...)
	data = appendI64(data, scheduledDate)

	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(holder).WRITE().SIGNER(),
			solana.Meta(nftMint),
			solana.Meta(holderTokenAccount).WRITE(),
			solana.Meta(escrowTokenAccount).WRITE(),
			solana.Meta(slot).WRITE(),
			solana.Meta(TokenProgramID),
			solana.Meta(SystemProgramID),
		},
		data,
	), nil
}

// BuildOpenAuctionInstruction builds open_auction(scheduled_date).
// Permissionless: any payer may open a due slot.
func BuildOpenAuctionInstruction(
	programID solana.PublicKey,
	payer solana.PublicKey,
	nftMint solana.PublicKey,
	scheduledDate int64,
	auctionID uint64,
) (solana.Instruction, error) {
	config, _, err := program.ConfigAddress(programID)
	if err != nil {
		return nil, err
	}
	slot, _, err := program.SlotAddress(programID, nftMint, scheduledDate)
	if err != nil {
		return nil, err
	}
	auction, _, err := program.AuctionAddress(programID, auctionID)
	if err != nil {
		return nil, err
	}
	bidVault, _, err := program.BidVaultAddress(programID, auctionID)
	if err != nil {
		return nil, err
	}
	slotEscrow, _, err := program.EscrowTokenAddress(slot, nftMint)
	if err != nil {
		return nil, err
	}
	auctionEscrow, _, err := program.EscrowTokenAddress(auction, nftMint)
	if err != nil {
		return nil, err
	}

	data := append([]byte{}, OpenAuctionDisc[:]...)
	data = appendI64(data, scheduledDate)

	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(payer).WRITE().SIGNER(),
			solana.Meta(config).WRITE(),
			solana.Meta(nftMint),
			solana.Meta(slot).WRITE(),
			solana.Meta(slotEscrow).WRITE(),
			solana.Meta(auction).WRITE(),
			solana.Meta(auctionEscrow).WRITE(),
			solana.Meta(bidVault).WRITE(),
			solana.Meta(TokenProgramID),
			solana.Meta(AssociatedTokenProgID),
			solana.Meta(SystemProgramID),
		},
		data,
	), nil
}

// BuildCloseSlotInstruction builds close_slot(scheduled_date), reclaiming
// the rent of a consumed registration for its lister.
func BuildCloseSlotInstruction(
	programID solana.PublicKey,
	payer solana.PublicKey,
	lister solana.PublicKey,
	nftMint solana.PublicKey,
	scheduledDate int64,
) (solana.Instruction, error) {
	slot, _, err := program.SlotAddress(programID, nftMint, scheduledDate)
	if err != nil {
		return nil, err
	}
	data := append([]byte{}, CloseSlotDisc[:]...)
	data = appendI64(data, scheduledDate)

	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(payer).SIGNER(),
			solana.Meta(lister).WRITE(),
			solana.Meta(slot).WRITE(),
			solana.Meta(SystemProgramID),
		},
		data,
	), nil
}

// BuildPlaceBidInstruction builds place_bid(bid_lamports). prevBidder is the
// current highest bidder so the program can refund them inside the same
// instruction; when there is no standing bid callers pass the bidder itself.
func BuildPlaceBidInstruction(
	programID solana.PublicKey,
	bidder solana.PublicKey,
	auctionID uint64,
	prevBidder solana.PublicKey,
	bidLamports uint64,
) (solana.Instruction, error) {
	config, _, err := program.ConfigAddress(programID)
	if err != nil {
		return nil, err
	}
	auction, _, err := program.AuctionAddress(programID, auctionID)
	if err != nil {
		return nil, err
	}
	bidVault, _, err := program.BidVaultAddress(programID, auctionID)
	if err != nil {
		return nil, err
	}

	data := append([]byte{}, PlaceBidDisc[:]...)
	data = appendU64(data, bidLamports)

	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(bidder).WRITE().SIGNER(),
			solana.Meta(config),
			solana.Meta(auction).WRITE(),
			solana.Meta(bidVault).WRITE(),
			solana.Meta(prevBidder).WRITE(),
			solana.Meta(SystemProgramID),
		},
		data,
	), nil
}

// BuildSettleAuctionInstruction builds settle_auction(auction_id). Callable
// by anyone once the countdown has expired. The winner and seller accounts
// come from the decoded auction state; with no bids the winner token account
// is the seller's own.
func BuildSettleAuctionInstruction(
	programID solana.PublicKey,
	caller solana.PublicKey,
	state *program.AuctionState,
	treasury solana.PublicKey,
) (solana.Instruction, error) {
	config, _, err := program.ConfigAddress(programID)
	if err != nil {
		return nil, err
	}
	auction, _, err := program.AuctionAddress(programID, state.AuctionID)
	if err != nil {
		return nil, err
	}
	bidVault, _, err := program.BidVaultAddress(programID, state.AuctionID)
	if err != nil {
		return nil, err
	}
	escrowTokenAccount, _, err := program.EscrowTokenAddress(auction, state.NftMint)
	if err != nil {
		return nil, err
	}
	recipient := state.Seller
	if winner, ok := state.CurrentBidder.Key(); ok {
		recipient = winner
	}
	recipientTokenAccount, _, err := program.EscrowTokenAddress(recipient, state.NftMint)
	if err != nil {
		return nil, err
	}

	data := append([]byte{}, SettleAuctionDisc[:]...)
	data = appendU64(data, state.AuctionID)

	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(caller).WRITE().SIGNER(),
			solana.Meta(config),
			solana.Meta(auction).WRITE(),
			solana.Meta(bidVault).WRITE(),
			solana.Meta(escrowTokenAccount).WRITE(),
			solana.Meta(recipientTokenAccount).WRITE(),
			solana.Meta(state.Seller).WRITE(),
			solana.Meta(treasury).WRITE(),
			solana.Meta(TokenProgramID),
			solana.Meta(AssociatedTokenProgID),
			solana.Meta(SystemProgramID),
		},
		data,
	), nil
}

func appendOptionU16(data []byte, v *uint16) []byte {
	if v == nil {
		return append(data, 0)
	}
	data = append(data, 1)
	return binary.LittleEndian.AppendUint16(data, *v)
}

func appendOptionU64(data []byte, v *uint64) []byte {
	if v == nil {
		return append(data, 0)
	}
	data = append(data, 1)
	return appendU64(data, *v)
}

// BuildUpdateConfigInstruction builds update_config. Each field is an Anchor
// Option: a presence byte followed by the value. Admin only.
func BuildUpdateConfigInstruction(
	programID solana.PublicKey,
	admin solana.PublicKey,
	update program.ConfigUpdate,
) (solana.Instruction, error) {
	config, _, err := program.ConfigAddress(programID)
	if err != nil {
		return nil, err
	}

	data := append([]byte{}, UpdateConfigDisc[:]...)
	if update.Treasury == nil {
		data = append(data, 0)
	} else {
		data = append(data, 1)
		data = append(data, update.Treasury.Bytes()...)
	}
	data = appendOptionU16(data, update.BidIncrementBps)
	data = appendOptionU16(data, update.FeeBps)
	data = appendOptionU16(data, update.ReducedFeeBps)
	data = appendOptionU64(data, update.ReducedFeeThreshold)
	data = appendOptionU64(data, update.ZeroFeeThreshold)

	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(admin).SIGNER(),
			solana.Meta(config).WRITE(),
		},
		data,
	), nil
}

// BuildInitializeConfigInstruction builds initialize_config with the fee and
// increment parameters.
func BuildInitializeConfigInstruction(
	programID solana.PublicKey,
	admin solana.PublicKey,
	treasury solana.PublicKey,
	commonMint solana.PublicKey,
	params program.ConfigParams,
) (solana.Instruction, error) {
	config, _, err := program.ConfigAddress(programID)
	if err != nil {
		return nil, err
	}

	data := append([]byte{}, InitializeConfigDisc[:]...)
	data = binary.LittleEndian.AppendUint16(data, params.BidIncrementBps)
	data = binary.LittleEndian.AppendUint16(data, params.FeeBps)
	data = binary.LittleEndian.AppendUint16(data, params.ReducedFeeBps)
	data = appendU64(data, params.ReducedFeeThreshold)
	data = appendU64(data, params.ZeroFeeThreshold)

	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(admin).WRITE().SIGNER(),
			solana.Meta(config).WRITE(),
			solana.Meta(treasury),
			solana.Meta(commonMint),
			solana.Meta(SystemProgramID),
		},
		data,
	), nil
}
