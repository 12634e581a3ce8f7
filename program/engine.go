package program

import (
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
)

var (
	errConfigNotInitialized = errors.New("auction engine: program config not initialized")
	errSlotNotFound         = errors.New("auction engine: slot registration not found")
	errAuctionNotFound      = errors.New("auction engine: auction not found")
	errInsufficientLamports = errors.New("auction engine: insufficient lamports")
)

// Engine executes the auction program's instructions against a ledger. Each
// instruction either commits in full or leaves no state change; the error
// returned is the same custom code the on-chain program would surface.
type Engine struct {
	programID solana.PublicKey
	ledger    *Ledger
	emitter   Emitter
	nowFn     func() int64
}

func NewEngine(programID solana.PublicKey, ledger *Ledger) *Engine {
	return &Engine{
		programID: programID,
		ledger:    ledger,
		emitter:   NoopEmitter{},
		nowFn:     func() int64 { return time.Now().Unix() },
	}
}

// SetNowFunc overrides the clock. Intended for tests.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetEmitter configures the event sink. Passing nil resets to a no-op.
func (e *Engine) SetEmitter(emitter Emitter) {
	if emitter == nil {
		e.emitter = NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) Ledger() *Ledger { return e.ledger }

func (e *Engine) ProgramID() solana.PublicKey { return e.programID }

// ConfigParams are the initialize_config arguments. Zero-valued basis point
// and threshold fields fall back to the program defaults.
type ConfigParams struct {
	Treasury            solana.PublicKey
	CommonMint          solana.PublicKey
	BidIncrementBps     uint16
	FeeBps              uint16
	ReducedFeeBps       uint16
	ReducedFeeThreshold uint64
	ZeroFeeThreshold    uint64
}

// InitializeConfig creates the singleton config account. Runs once; the
// caller becomes the admin for later parameter updates.
func (e *Engine) InitializeConfig(admin solana.PublicKey, params ConfigParams) (*ProgramConfig, error) {
	var created *ProgramConfig
	err := e.ledger.execute(func(v *view) error {
		if v.config != nil {
			return ErrConfigAlreadyInitialized
		}
		_, bump, err := ConfigAddress(e.programID)
		if err != nil {
			return err
		}
		cfg := &ProgramConfig{
			Admin:               admin,
			Treasury:            params.Treasury,
			CommonMint:          params.CommonMint,
			BidIncrementBps:     params.BidIncrementBps,
			FeeBps:              params.FeeBps,
			ReducedFeeBps:       params.ReducedFeeBps,
			ReducedFeeThreshold: params.ReducedFeeThreshold,
			ZeroFeeThreshold:    params.ZeroFeeThreshold,
			Bump:                bump,
		}
		if cfg.BidIncrementBps == 0 {
			cfg.BidIncrementBps = DefaultBidIncrementBps
		}
		if cfg.FeeBps == 0 {
			cfg.FeeBps = DefaultFeeBps
		}
		if cfg.ReducedFeeBps == 0 {
			cfg.ReducedFeeBps = DefaultReducedFeeBps
		}
		if cfg.ReducedFeeThreshold == 0 {
			cfg.ReducedFeeThreshold = DefaultReducedFeeThreshold
		}
		if cfg.ZeroFeeThreshold == 0 {
			cfg.ZeroFeeThreshold = DefaultZeroFeeThreshold
		}
		if err := chargeRent(v, admin, ConfigAccountSize); err != nil {
			return err
		}
		v.config = cfg
		created = cfg.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ConfigUpdate carries optional parameter changes; nil fields stay as-is.
type ConfigUpdate struct {
	Treasury            *solana.PublicKey
	BidIncrementBps     *uint16
	FeeBps              *uint16
	ReducedFeeBps       *uint16
	ReducedFeeThreshold *uint64
	ZeroFeeThreshold    *uint64
}

// UpdateConfig applies parameter changes. Admin only.
func (e *Engine) UpdateConfig(caller solana.PublicKey, update ConfigUpdate) error {
	return e.ledger.execute(func(v *view) error {
		if v.config == nil {
			return errConfigNotInitialized
		}
		if v.config.Admin != caller {
			return ErrUnauthorized
		}
		if update.Treasury != nil {
			v.config.Treasury = *update.Treasury
		}
		if update.BidIncrementBps != nil {
			v.config.BidIncrementBps = *update.BidIncrementBps
		}
		if update.FeeBps != nil {
			v.config.FeeBps = *update.FeeBps
		}
		if update.ReducedFeeBps != nil {
			v.config.ReducedFeeBps = *update.ReducedFeeBps
		}
		if update.ReducedFeeThreshold != nil {
			v.config.ReducedFeeThreshold = *update.ReducedFeeThreshold
		}
		if update.ZeroFeeThreshold != nil {
			v.config.ZeroFeeThreshold = *update.ZeroFeeThreshold
		}
		return nil
	})
}

// ListSlot registers nftMint for auction on scheduledDate and escrows the NFT
// immediately. The holder loses custody the moment they list; deferring the
// escrow to auction start would change semantics wallet scans rely on.
func (e *Engine) ListSlot(holder, nftMint solana.PublicKey, scheduledDate int64, reservePrice uint64) (*SlotRegistration, error) {
	var created *SlotRegistration
	err := e.ledger.execute(func(v *view) error {
		if v.config == nil {
			return errConfigNotInitialized
		}
		if reservePrice == 0 {
			return ErrInvalidReservePrice
		}
		if scheduledDate%SecondsPerDay != 0 {
			return ErrInvalidScheduledDate
		}
		// Policy: listings start at tomorrow. Today and past days are
		// rejected.
		if scheduledDate <= StartOfDay(e.nowFn()) {
			return ErrDateInPast
		}

		holderATA, _, err := EscrowTokenAddress(holder, nftMint)
		if err != nil {
			return err
		}
		// A holder who never held the NFT has no ATA for it, so a missing
		// account is the same caller mistake as a foreign one.
		tok, ok := v.tokens[holderATA]
		if !ok {
			return ErrNotTokenOwner
		}
		if tok.Owner != holder {
			return ErrNotTokenOwner
		}
		if tok.Mint != nftMint || tok.Amount != 1 || tok.Decimals != 0 {
			return ErrInvalidTokenAmount
		}

		slotAddr, bump, err := SlotAddress(e.programID, nftMint, scheduledDate)
		if err != nil {
			return err
		}
		// The PDA is the uniqueness guard: any live account at this
		// address, consumed or not, blocks a second registration.
		if _, exists := v.slots[slotAddr]; exists {
			return ErrSlotAlreadyExists
		}

		escrowATA, _, err := EscrowTokenAddress(slotAddr, nftMint)
		if err != nil {
			return err
		}
		if err := v.transferToken(holderATA, escrowATA, nftMint, slotAddr, 1); err != nil {
			return err
		}
		if err := chargeRent(v, holder, SlotAccountSize); err != nil {
			return err
		}

		slot := &SlotRegistration{
			NftMint:       nftMint,
			Owner:         holder,
			ScheduledDate: scheduledDate,
			ReservePrice:  reservePrice,
			Escrowed:      true,
			Bump:          bump,
		}
		v.slots[slotAddr] = slot
		created = slot.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.emitter.Emit(newSlotEvent(EventTypeSlotListed, created))
	return created, nil
}

// CancelSlot lets the holder withdraw an unconsumed registration. The NFT
// moves back to the holder's token account and the slot closes, returning
// its rent.
func (e *Engine) CancelSlot(holder, nftMint solana.PublicKey, scheduledDate int64) error {
	var cancelled *SlotRegistration
	err := e.ledger.execute(func(v *view) error {
		slotAddr, _, err := SlotAddress(e.programID, nftMint, scheduledDate)
		if err != nil {
			return err
		}
		slot, ok := v.slots[slotAddr]
		if !ok {
			return errSlotNotFound
		}
		if slot.Owner != holder {
			return ErrUnauthorized
		}
		if slot.Consumed {
			return ErrSlotAlreadyConsumed
		}
		escrowATA, _, err := EscrowTokenAddress(slotAddr, nftMint)
		if err != nil {
			return err
		}
		holderATA, _, err := EscrowTokenAddress(holder, nftMint)
		if err != nil {
			return err
		}
		if err := v.transferToken(escrowATA, holderATA, nftMint, holder, 1); err != nil {
			return err
		}
		delete(v.tokens, escrowATA)
		delete(v.slots, slotAddr)
		if err := refundRent(v, holder, SlotAccountSize); err != nil {
			return err
		}
		cancelled = slot.Clone()
		return nil
	})
	if err != nil {
		return err
	}
	e.emitter.Emit(newSlotEvent(EventTypeSlotCancelled, cancelled))
	return nil
}

// OpenAuction converts a due, escrowed, unconsumed slot into a live auction.
// Permissionless: anyone may open a due slot; the consumed flag is the
// check-and-set guard that makes racing openers lose cleanly. The seller's
// fee tier is snapshotted here, at activation.
func (e *Engine) OpenAuction(payer, nftMint solana.PublicKey, scheduledDate int64) (*AuctionState, error) {
	var opened *AuctionState
	err := e.ledger.execute(func(v *view) error {
		if v.config == nil {
			return errConfigNotInitialized
		}
		slotAddr, _, err := SlotAddress(e.programID, nftMint, scheduledDate)
		if err != nil {
			return err
		}
		slot, ok := v.slots[slotAddr]
		if !ok {
			return errSlotNotFound
		}
		if !slot.Escrowed {
			return ErrSlotNotEscrowed
		}
		if slot.Consumed {
			return ErrSlotAlreadyConsumed
		}
		now := e.nowFn()
		if now < slot.ScheduledDate {
			return ErrSlotNotDue
		}

		auctionID := v.config.NextAuctionID
		v.config.NextAuctionID++

		auctionAddr, bump, err := AuctionAddress(e.programID, auctionID)
		if err != nil {
			return err
		}
		_, vaultBump, err := BidVaultAddress(e.programID, auctionID)
		if err != nil {
			return err
		}

		// Move the NFT from the slot's escrow into the auction's so the
		// auction account alone is enough to settle.
		slotEscrow, _, err := EscrowTokenAddress(slotAddr, nftMint)
		if err != nil {
			return err
		}
		auctionEscrow, _, err := EscrowTokenAddress(auctionAddr, nftMint)
		if err != nil {
			return err
		}
		if err := v.transferToken(slotEscrow, auctionEscrow, nftMint, auctionAddr, 1); err != nil {
			return err
		}
		delete(v.tokens, slotEscrow)

		feeBps := v.config.FeeTierBps(v.commonBalance(slot.Owner, v.config.CommonMint))

		if err := chargeRent(v, payer, AuctionAccountSize); err != nil {
			return err
		}

		auction := &AuctionState{
			NftMint:       nftMint,
			Seller:        slot.Owner,
			AuctionID:     auctionID,
			ReservePrice:  slot.ReservePrice,
			EndTime:       slot.ScheduledDate + AuctionDurationSecs,
			CurrentBidder: NonePubkey(),
			FeeBps:        feeBps,
			Bump:          bump,
			CreatedAt:     now,
			VaultBump:     vaultBump,
		}
		slot.Consumed = true
		v.auctions[auctionAddr] = auction
		opened = auction.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.emitter.Emit(newAuctionEvent(EventTypeAuctionOpened, opened))
	return opened, nil
}

// CloseSlot reclaims the rent of a consumed registration. Permissionless;
// the rent always returns to the original lister.
func (e *Engine) CloseSlot(nftMint solana.PublicKey, scheduledDate int64) error {
	var closed *SlotRegistration
	err := e.ledger.execute(func(v *view) error {
		slotAddr, _, err := SlotAddress(e.programID, nftMint, scheduledDate)
		if err != nil {
			return err
		}
		slot, ok := v.slots[slotAddr]
		if !ok {
			return errSlotNotFound
		}
		if !slot.Consumed {
			return ErrSlotStillActive
		}
		delete(v.slots, slotAddr)
		if err := refundRent(v, slot.Owner, SlotAccountSize); err != nil {
			return err
		}
		closed = slot.Clone()
		return nil
	})
	if err != nil {
		return err
	}
	e.emitter.Emit(newSlotEvent(EventTypeSlotClosed, closed))
	return nil
}

// PlaceBid escrows the new bid in the vault and refunds the previous bidder
// within the same instruction. The vault never holds more than one bid.
func (e *Engine) PlaceBid(bidder solana.PublicKey, auctionID uint64, bidLamports uint64) error {
	var (
		after    *AuctionState
		refunded *AuctionState
	)
	err := e.ledger.execute(func(v *view) error {
		if v.config == nil {
			return errConfigNotInitialized
		}
		auctionAddr, _, err := AuctionAddress(e.programID, auctionID)
		if err != nil {
			return err
		}
		auction, ok := v.auctions[auctionAddr]
		if !ok {
			return errAuctionNotFound
		}
		if auction.Settled {
			return ErrAuctionSettled
		}
		if e.nowFn() >= auction.EndTime {
			return ErrAuctionEnded
		}
		min, err := MinNextBid(auction.ReservePrice, auction.CurrentBid, v.config.BidIncrementBps)
		if err != nil {
			return err
		}
		if bidLamports < min {
			return ErrBidTooLow
		}

		vaultAddr, _, err := BidVaultAddress(e.programID, auctionID)
		if err != nil {
			return err
		}
		if v.lamports[vaultAddr] != auction.CurrentBid {
			return ErrVaultBalanceMismatch
		}
		if v.lamports[bidder] < bidLamports {
			return errInsufficientLamports
		}
		if err := v.transferLamports(bidder, vaultAddr, bidLamports); err != nil {
			return err
		}
		if prev, ok := auction.CurrentBidder.Key(); ok {
			// Refund the outbid bidder in the same instruction as the
			// new deposit; no lamports are retained past this commit.
			if err := v.transferLamports(vaultAddr, prev, auction.CurrentBid); err != nil {
				return err
			}
			refunded = auction.Clone()
		}
		auction.CurrentBid = bidLamports
		auction.CurrentBidder = SomePubkey(bidder)
		after = auction.Clone()
		return nil
	})
	if err != nil {
		return err
	}
	if refunded != nil {
		e.emitter.Emit(newAuctionEvent(EventTypeBidderRefunded, refunded))
	}
	e.emitter.Emit(newAuctionEvent(EventTypeBidPlaced, after))
	return nil
}

// SettleAuction distributes the NFT and funds after the countdown expires.
// With a winning bid the vault drains into the seller payout and the
// treasury fee; with no bids the NFT simply returns to the seller. Terminal:
// a second call fails with AlreadySettled and moves nothing.
func (e *Engine) SettleAuction(auctionID uint64) error {
	var (
		settled *AuctionState
		evtType string
	)
	err := e.ledger.execute(func(v *view) error {
		if v.config == nil {
			return errConfigNotInitialized
		}
		auctionAddr, _, err := AuctionAddress(e.programID, auctionID)
		if err != nil {
			return err
		}
		auction, ok := v.auctions[auctionAddr]
		if !ok {
			return errAuctionNotFound
		}
		if auction.Settled {
			return ErrAlreadySettled
		}
		if e.nowFn() < auction.EndTime {
			return ErrAuctionNotEnded
		}

		escrowATA, _, err := EscrowTokenAddress(auctionAddr, auction.NftMint)
		if err != nil {
			return err
		}

		winner, hasBid := auction.CurrentBidder.Key()
		if !hasBid {
			sellerATA, _, err := EscrowTokenAddress(auction.Seller, auction.NftMint)
			if err != nil {
				return err
			}
			if err := v.transferToken(escrowATA, sellerATA, auction.NftMint, auction.Seller, 1); err != nil {
				return err
			}
			delete(v.tokens, escrowATA)
			auction.Settled = true
			evtType = EventTypeSettledNoBids
			settled = auction.Clone()
			return nil
		}

		vaultAddr, _, err := BidVaultAddress(e.programID, auctionID)
		if err != nil {
			return err
		}
		if v.lamports[vaultAddr] != auction.CurrentBid {
			return ErrVaultBalanceMismatch
		}
		fee, err := FeeAmount(auction.CurrentBid, auction.FeeBps)
		if err != nil {
			return err
		}
		if err := v.transferLamports(vaultAddr, v.config.Treasury, fee); err != nil {
			return err
		}
		if err := v.transferLamports(vaultAddr, auction.Seller, auction.CurrentBid-fee); err != nil {
			return err
		}
		winnerATA, _, err := EscrowTokenAddress(winner, auction.NftMint)
		if err != nil {
			return err
		}
		if err := v.transferToken(escrowATA, winnerATA, auction.NftMint, winner, 1); err != nil {
			return err
		}
		delete(v.tokens, escrowATA)
		auction.Settled = true
		evtType = EventTypeSettledSale
		settled = auction.Clone()
		return nil
	})
	if err != nil {
		return err
	}
	e.emitter.Emit(newAuctionEvent(evtType, settled))
	return nil
}

func chargeRent(v *view, payer solana.PublicKey, accountSize int) error {
	rent := rentExemptLamports(accountSize)
	if v.lamports[payer] < rent {
		return errInsufficientLamports
	}
	return v.debitLamports(payer, rent)
}

func refundRent(v *view, to solana.PublicKey, accountSize int) error {
	return v.creditLamports(to, rentExemptLamports(accountSize))
}
