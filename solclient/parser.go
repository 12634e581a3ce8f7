package solclient

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ParsedTokenAccount - the fields we need from a raw SPL token account
type ParsedTokenAccount struct {
	Mint   solana.PublicKey
	Owner  solana.PublicKey
	Amount uint64
}

// ParseTokenAccount decodes the mint, owner and amount from a raw SPL token
// account image.
func ParseTokenAccount(data []byte) (*ParsedTokenAccount, error) {
	if len(data) < tokenAccountSize {
		return nil, fmt.Errorf("invalid token account data length: %d", len(data))
	}
	return &ParsedTokenAccount{
		Mint:   solana.PublicKeyFromBytes(data[0:32]),
		Owner:  solana.PublicKeyFromBytes(data[tokenAccountOwnerOffset : tokenAccountOwnerOffset+32]),
		Amount: binary.LittleEndian.Uint64(data[tokenAmountOffset : tokenAmountOffset+8]),
	}, nil
}

func parseTokenAccountAmount(data []byte) (uint64, error) {
	parsed, err := ParseTokenAccount(data)
	if err != nil {
		return 0, err
	}
	return parsed.Amount, nil
}
