package program

import (
	"sync"

	"github.com/gagliardetto/solana-go"
)

// Lamports required to keep an account of the given data size alive. Mirrors
// the runtime's two-year rent-exemption formula.
func rentExemptLamports(dataLen int) uint64 {
	return uint64(dataLen+128) * 6960
}

// Ledger is the account state the engine executes against: program accounts,
// plain lamport balances and SPL token accounts, keyed by address. All
// instructions touching it run under one mutex, which gives the single global
// total order per account the runtime would provide.
type Ledger struct {
	mu       sync.Mutex
	config   *ProgramConfig
	slots    map[solana.PublicKey]*SlotRegistration
	auctions map[solana.PublicKey]*AuctionState
	lamports map[solana.PublicKey]uint64
	tokens   map[solana.PublicKey]*TokenAccount
}

func NewLedger() *Ledger {
	return &Ledger{
		slots:    make(map[solana.PublicKey]*SlotRegistration),
		auctions: make(map[solana.PublicKey]*AuctionState),
		lamports: make(map[solana.PublicKey]uint64),
		tokens:   make(map[solana.PublicKey]*TokenAccount),
	}
}

// execute runs fn against a fork of the ledger and commits only when fn
// succeeds. A failed instruction leaves no trace: all-or-nothing, the same
// atomic-commit contract every on-chain transaction has.
func (l *Ledger) execute(fn func(v *view) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	v := l.fork()
	if err := fn(v); err != nil {
		return err
	}
	l.config = v.config
	l.slots = v.slots
	l.auctions = v.auctions
	l.lamports = v.lamports
	l.tokens = v.tokens
	return nil
}

func (l *Ledger) fork() *view {
	v := &view{
		config:   l.config.Clone(),
		slots:    make(map[solana.PublicKey]*SlotRegistration, len(l.slots)),
		auctions: make(map[solana.PublicKey]*AuctionState, len(l.auctions)),
		lamports: make(map[solana.PublicKey]uint64, len(l.lamports)),
		tokens:   make(map[solana.PublicKey]*TokenAccount, len(l.tokens)),
	}
	for addr, s := range l.slots {
		v.slots[addr] = s.Clone()
	}
	for addr, a := range l.auctions {
		v.auctions[addr] = a.Clone()
	}
	for addr, bal := range l.lamports {
		v.lamports[addr] = bal
	}
	for addr, t := range l.tokens {
		v.tokens[addr] = t.Clone()
	}
	return v
}

// view is the mutable fork an instruction runs against.
type view struct {
	config   *ProgramConfig
	slots    map[solana.PublicKey]*SlotRegistration
	auctions map[solana.PublicKey]*AuctionState
	lamports map[solana.PublicKey]uint64
	tokens   map[solana.PublicKey]*TokenAccount
}

func (v *view) creditLamports(addr solana.PublicKey, amount uint64) error {
	bal := v.lamports[addr]
	if bal+amount < bal {
		return ErrMathOverflow
	}
	v.lamports[addr] = bal + amount
	return nil
}

func (v *view) debitLamports(addr solana.PublicKey, amount uint64) error {
	bal := v.lamports[addr]
	if bal < amount {
		return ErrVaultBalanceMismatch
	}
	v.lamports[addr] = bal - amount
	return nil
}

// transferLamports moves amount between system accounts inside the fork.
func (v *view) transferLamports(from, to solana.PublicKey, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := v.debitLamports(from, amount); err != nil {
		return err
	}
	return v.creditLamports(to, amount)
}

// transferToken moves the full NFT unit between token accounts, creating the
// destination account if needed.
func (v *view) transferToken(from, to solana.PublicKey, mint solana.PublicKey, owner solana.PublicKey, amount uint64) error {
	src, ok := v.tokens[from]
	if !ok || src.Mint != mint || src.Amount < amount {
		return ErrInvalidTokenAmount
	}
	dst, ok := v.tokens[to]
	if !ok {
		dst = &TokenAccount{Mint: mint, Owner: owner, Decimals: src.Decimals}
		v.tokens[to] = dst
	}
	src.Amount -= amount
	dst.Amount += amount
	return nil
}

// commonBalance sums the governance token held across all of owner's token
// accounts, the same scan the off-chain fee-tier lookup performs.
func (v *view) commonBalance(owner, mint solana.PublicKey) uint64 {
	var total uint64
	for _, t := range v.tokens {
		if t.Owner == owner && t.Mint == mint {
			total += t.Amount
		}
	}
	return total
}

// ── Read-side accessors (all return clones) ─────────────────────────────────

func (l *Ledger) Config() (*ProgramConfig, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.config == nil {
		return nil, false
	}
	return l.config.Clone(), true
}

func (l *Ledger) Slot(addr solana.PublicKey) (*SlotRegistration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[addr]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// Slots returns every live slot registration keyed by address.
func (l *Ledger) Slots() map[solana.PublicKey]*SlotRegistration {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[solana.PublicKey]*SlotRegistration, len(l.slots))
	for addr, s := range l.slots {
		out[addr] = s.Clone()
	}
	return out
}

func (l *Ledger) Auction(addr solana.PublicKey) (*AuctionState, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.auctions[addr]
	if !ok {
		return nil, false
	}
	return a.Clone(), true
}

// Auctions returns every auction account keyed by address.
func (l *Ledger) Auctions() map[solana.PublicKey]*AuctionState {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[solana.PublicKey]*AuctionState, len(l.auctions))
	for addr, a := range l.auctions {
		out[addr] = a.Clone()
	}
	return out
}

func (l *Ledger) Lamports(addr solana.PublicKey) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lamports[addr]
}

func (l *Ledger) TokenAccount(addr solana.PublicKey) (*TokenAccount, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.tokens[addr]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// ── Test/bootstrap mutators ─────────────────────────────────────────────────

// SetLamports seeds a wallet balance. Intended for tests and for mirroring
// observed chain state into a local ledger.
func (l *Ledger) SetLamports(addr solana.PublicKey, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lamports[addr] = amount
}

// SetTokenAccount seeds a token account.
func (l *Ledger) SetTokenAccount(addr solana.PublicKey, acct *TokenAccount) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens[addr] = acct.Clone()
}
