package solclient

import "github.com/gagliardetto/solana-go"

// Program ID (from declare_id in the auction program).
const ProgramIDBase58 = "EWXiRHrYNtMy6wXQsy2oZhops6Dsw5M4GT59Bqb3xPjC"

// COMMON governance token mint (mainnet).
const CommonMintMainnet = "CmnrTokenMinTAddreSS111111111111111111111111"

// RPC URLs
const (
	RPCURLDevnet  = "https://api.devnet.solana.com"
	RPCURLMainnet = "https://api.mainnet-beta.solana.com"
)

// Explorer URLs
const (
	ExplorerURLDevnet  = "https://explorer.solana.com/tx/%s?cluster=devnet"
	ExplorerURLMainnet = "https://explorer.solana.com/tx/%s"
)

// Listing policy: a holder can schedule at most this far ahead, starting
// from tomorrow. Enforced client-side; the program only rejects past days.
const ListingWindowDays = 60

var (
	SystemProgramID       = solana.SystemProgramID
	TokenProgramID        = solana.TokenProgramID
	AssociatedTokenProgID = solana.SPLAssociatedTokenAccountProgramID
)

// SPL token account layout constants used when scanning COMMON balances.
const (
	tokenAccountSize        = 165
	tokenAmountOffset       = 64
	tokenAccountOwnerOffset = 32
)
