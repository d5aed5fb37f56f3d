// Package wallet holds the process-wide keypair wallet used to sign and fund
// swap transactions
package wallet

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/solswap-labs/exchange-core/internal/rpc"
	"github.com/solswap-labs/exchange-core/internal/tokens"
)

// Signer is the signing capability the lifecycle orchestrator depends on
type Signer interface {
	PublicKey() solana.PublicKey
	SignTx(tx *solana.Transaction) error
}

// Wallet pairs an ed25519 keypair with the RPC client for balance reads
type Wallet struct {
	rpc  *rpc.Client
	priv solana.PrivateKey
	pub  solana.PublicKey
}

// New creates a wallet from a private key string: either a base58-encoded
// 64-byte key or a solana-keygen JSON byte array
func New(privateKey string, rpcClient *rpc.Client) (*Wallet, error) {
	if strings.TrimSpace(privateKey) == "" {
		return nil, fmt.Errorf("wallet: private key is required")
	}
	priv, err := parsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	return &Wallet{rpc: rpcClient, priv: priv, pub: priv.PublicKey()}, nil
}

func (w *Wallet) Address() string             { return w.pub.String() }
func (w *Wallet) PublicKey() solana.PublicKey { return w.pub }

// SignTx signs a transaction with the wallet's private key
func (w *Wallet) SignTx(tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.pub) {
			return &w.priv
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}

// GetBalanceSOL returns the wallet's native balance in SOL
func (w *Wallet) GetBalanceSOL(ctx context.Context) (float64, error) {
	lamports, err := w.rpc.GetBalance(ctx, w.pub)
	if err != nil {
		return 0, err
	}
	return float64(lamports) / 1e9, nil
}

// GetTokenBalance returns the wallet's balance of a token in human-readable
// units. Native SOL reads the lamport balance; other mints read the ATA,
// treating a missing account as zero.
func (w *Wallet) GetTokenBalance(ctx context.Context, token tokens.TokenInfo) (float64, error) {
	if tokens.IsNativeSOL(token.Mint()) {
		return w.GetBalanceSOL(ctx)
	}

	ata, _, err := solana.FindAssociatedTokenAddress(w.pub, token.Mint())
	if err != nil {
		return 0, fmt.Errorf("failed to derive token account: %w", err)
	}

	exists, err := w.rpc.AccountExists(ctx, ata)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	raw, err := w.rpc.GetTokenAccountBalance(ctx, ata)
	if err != nil {
		return 0, err
	}
	bal, _ := tokens.FromRaw(raw, token.Decimals).Float64()
	return bal, nil
}

func parsePrivateKey(s string) (solana.PrivateKey, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		var ints []int
		if err := json.Unmarshal([]byte(s), &ints); err != nil {
			return nil, fmt.Errorf("wallet: invalid JSON private key: %w", err)
		}
		b := make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("wallet: invalid byte at %d: %d", i, v)
			}
			b[i] = byte(v)
		}
		if len(b) != ed25519.PrivateKeySize {
			return nil, fmt.Errorf("wallet: expected %d bytes, got %d", ed25519.PrivateKeySize, len(b))
		}
		return solana.PrivateKey(b), nil
	}

	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("wallet: invalid base58 private key: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("wallet: expected %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}
	return solana.PrivateKey(raw), nil
}
