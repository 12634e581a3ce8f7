package solclient

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"commonerchain/program"
)

// Client wraps the Solana RPC client for the auction program.
type Client struct {
	RPC        *rpc.Client
	ProgramID  solana.PublicKey
	CommonMint solana.PublicKey
	Network    string // "devnet", "mainnet", "localhost"
}

// NewClient creates a new auction program client.
func NewClient(rpcURL, network string) (*Client, error) {
	programID, err := solana.PublicKeyFromBase58(ProgramIDBase58)
	if err != nil {
		return nil, fmt.Errorf("invalid program ID: %w", err)
	}
	commonMint, err := solana.PublicKeyFromBase58(CommonMintMainnet)
	if err != nil {
		return nil, fmt.Errorf("invalid COMMON mint: %w", err)
	}
	return &Client{
		RPC:        rpc.New(rpcURL),
		ProgramID:  programID,
		CommonMint: commonMint,
		Network:    network,
	}, nil
}

// GetExplorerURL generates an explorer link for a signature.
func (c *Client) GetExplorerURL(signature string) string {
	if c.Network == "mainnet" {
		return fmt.Sprintf(ExplorerURLMainnet, signature)
	}
	return fmt.Sprintf(ExplorerURLDevnet, signature)
}

// GetConfig fetches and decodes the program config.
func (c *Client) GetConfig(ctx context.Context) (*program.ProgramConfig, error) {
	addr, _, err := program.ConfigAddress(c.ProgramID)
	if err != nil {
		return nil, err
	}
	info, err := c.RPC.GetAccountInfo(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch config account: %w", err)
	}
	if info == nil || info.Value == nil {
		return nil, fmt.Errorf("config account not found")
	}
	return program.DecodeConfig(info.Value.Data.GetBinary())
}

// GetAuction fetches and decodes the auction account for an id.
func (c *Client) GetAuction(ctx context.Context, auctionID uint64) (*program.AuctionState, error) {
	addr, _, err := program.AuctionAddress(c.ProgramID, auctionID)
	if err != nil {
		return nil, err
	}
	info, err := c.RPC.GetAccountInfo(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch auction account: %w", err)
	}
	if info == nil || info.Value == nil {
		return nil, fmt.Errorf("auction %d not found", auctionID)
	}
	return program.DecodeAuction(info.Value.Data.GetBinary())
}

// KeyedAuction pairs an auction account with its address.
type KeyedAuction struct {
	Pubkey solana.PublicKey
	State  *program.AuctionState
}

// FindAuctionByMint locates the auction for an NFT mint by scanning program
// accounts with a size and memcmp filter. When multiple auctions exist for
// the mint the unsettled one wins; otherwise the last settled one is
// returned. Returns nil when the mint has never been auctioned.
func (c *Client) FindAuctionByMint(ctx context.Context, nftMint solana.PublicKey) (*KeyedAuction, error) {
	out, err := c.RPC.GetProgramAccountsWithOpts(ctx, c.ProgramID, &rpc.GetProgramAccountsOpts{
		Encoding: solana.EncodingBase64,
		Filters: []rpc.RPCFilter{
			{DataSize: program.AuctionAccountSize},
			{Memcmp: &rpc.RPCFilterMemcmp{
				Offset: program.AuctionMintOffset,
				Bytes:  solana.Base58(nftMint.Bytes()),
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan auction accounts: %w", err)
	}
	if len(out) == 0 {
		return nil, nil
	}

	var last *KeyedAuction
	for _, keyed := range out {
		state, err := program.DecodeAuction(keyed.Account.Data.GetBinary())
		if err != nil {
			continue
		}
		entry := &KeyedAuction{Pubkey: keyed.Pubkey, State: state}
		if !state.Settled {
			return entry, nil
		}
		last = entry
	}
	return last, nil
}

// FetchAuctions returns every auction account the program holds.
func (c *Client) FetchAuctions(ctx context.Context) ([]*KeyedAuction, error) {
	out, err := c.RPC.GetProgramAccountsWithOpts(ctx, c.ProgramID, &rpc.GetProgramAccountsOpts{
		Encoding: solana.EncodingBase64,
		Filters: []rpc.RPCFilter{
			{DataSize: program.AuctionAccountSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan auction accounts: %w", err)
	}

	auctions := make([]*KeyedAuction, 0, len(out))
	for _, keyed := range out {
		state, err := program.DecodeAuction(keyed.Account.Data.GetBinary())
		if err != nil {
			continue
		}
		auctions = append(auctions, &KeyedAuction{Pubkey: keyed.Pubkey, State: state})
	}
	return auctions, nil
}

// KeyedSlot pairs a slot registration with its address.
type KeyedSlot struct {
	Pubkey solana.PublicKey
	State  *program.SlotRegistration
}

// FetchSlots returns every slot registration the program currently holds.
// Filters by exact account size, then by discriminator, since other account
// types could in principle share the size.
func (c *Client) FetchSlots(ctx context.Context) ([]*KeyedSlot, error) {
	out, err := c.RPC.GetProgramAccountsWithOpts(ctx, c.ProgramID, &rpc.GetProgramAccountsOpts{
		Encoding: solana.EncodingBase64,
		Filters: []rpc.RPCFilter{
			{DataSize: program.SlotAccountSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan slot accounts: %w", err)
	}

	slots := make([]*KeyedSlot, 0, len(out))
	for _, keyed := range out {
		state, err := program.DecodeSlot(keyed.Account.Data.GetBinary())
		if err != nil {
			continue
		}
		slots = append(slots, &KeyedSlot{Pubkey: keyed.Pubkey, State: state})
	}
	return slots, nil
}

// CommonBalance sums the COMMON governance token held across all of the
// wallet's token accounts.
func (c *Client) CommonBalance(ctx context.Context, wallet solana.PublicKey) (uint64, error) {
	out, err := c.RPC.GetTokenAccountsByOwner(
		ctx,
		wallet,
		&rpc.GetTokenAccountsConfig{Mint: &c.CommonMint},
		&rpc.GetTokenAccountsOpts{Encoding: solana.EncodingBase64},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch token accounts: %w", err)
	}

	var total uint64
	for _, acct := range out.Value {
		data := acct.Account.Data.GetBinary()
		amount, err := parseTokenAccountAmount(data)
		if err != nil {
			continue
		}
		total += amount
	}
	return total, nil
}

// MinNextBid mirrors the on-chain minimum-bid computation for an auction,
// using the live config's increment.
func (c *Client) MinNextBid(ctx context.Context, state *program.AuctionState) (uint64, error) {
	cfg, err := c.GetConfig(ctx)
	if err != nil {
		return 0, err
	}
	return program.MinNextBid(state.ReservePrice, state.CurrentBid, cfg.BidIncrementBps)
}

// FeeTierBps returns the fee tier a seller would get if their auction
// activated right now.
func (c *Client) FeeTierBps(ctx context.Context, seller solana.PublicKey) (uint16, error) {
	cfg, err := c.GetConfig(ctx)
	if err != nil {
		return 0, err
	}
	balance, err := c.CommonBalance(ctx, seller)
	if err != nil {
		return 0, err
	}
	return cfg.FeeTierBps(balance), nil
}
