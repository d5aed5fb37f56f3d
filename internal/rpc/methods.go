package rpc

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
)

// RPCError represents a JSON-RPC error response
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// AccountInfo is the decoded payload of getAccountInfo
type AccountInfo struct {
	Lamports uint64
	Owner    solana.PublicKey
	Data     []byte
}

// GetAccountInfo fetches an account; a nil result means the account does not
// exist on-chain.
func (c *Client) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*AccountInfo, error) {
	var resp struct {
		Result struct {
			Value *struct {
				Lamports uint64   `json:"lamports"`
				Owner    string   `json:"owner"`
				Data     []string `json:"data"`
			} `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []any{
		pubkey.String(),
		map[string]any{"encoding": "base64", "commitment": "confirmed"},
	}

	if err := c.Call(ctx, "getAccountInfo", params, &resp); err != nil {
		return nil, fmt.Errorf("getAccountInfo RPC failed: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("getAccountInfo error: %s", resp.Error.Message)
	}
	if resp.Result.Value == nil {
		return nil, nil
	}

	var data []byte
	if len(resp.Result.Value.Data) > 0 {
		raw, err := base64.StdEncoding.DecodeString(resp.Result.Value.Data[0])
		if err != nil {
			return nil, fmt.Errorf("invalid account data encoding: %w", err)
		}
		data = raw
	}

	owner, err := solana.PublicKeyFromBase58(resp.Result.Value.Owner)
	if err != nil {
		return nil, fmt.Errorf("invalid account owner: %w", err)
	}

	return &AccountInfo{
		Lamports: resp.Result.Value.Lamports,
		Owner:    owner,
		Data:     data,
	}, nil
}

// AccountExists reports whether the account has on-chain state
func (c *Client) AccountExists(ctx context.Context, pubkey solana.PublicKey) (bool, error) {
	info, err := c.GetAccountInfo(ctx, pubkey)
	if err != nil {
		return false, err
	}
	return info != nil, nil
}

// GetTokenAccountBalance returns the raw base-unit balance of an SPL token
// account
func (c *Client) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	var resp struct {
		Result struct {
			Value struct {
				Amount   string `json:"amount"`
				Decimals uint8  `json:"decimals"`
			} `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []any{account.String()}

	if err := c.Call(ctx, "getTokenAccountBalance", params, &resp); err != nil {
		return 0, fmt.Errorf("getTokenAccountBalance RPC failed: %w", err)
	}
	if resp.Error != nil {
		return 0, fmt.Errorf("getTokenAccountBalance error: %s", resp.Error.Message)
	}

	amount, err := strconv.ParseUint(resp.Result.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount format: %w", err)
	}
	return amount, nil
}

// GetBalance returns the lamport balance of an account
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error) {
	var resp struct {
		Result struct {
			Value uint64 `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []any{
		pubkey.String(),
		map[string]any{"commitment": "confirmed"},
	}

	if err := c.Call(ctx, "getBalance", params, &resp); err != nil {
		return 0, fmt.Errorf("getBalance RPC failed: %w", err)
	}
	if resp.Error != nil {
		return 0, fmt.Errorf("getBalance error: %s", resp.Error.Message)
	}
	return resp.Result.Value, nil
}

// GetLatestBlockhash fetches the most recent blockhash
func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	var resp struct {
		Result struct {
			Value struct {
				Blockhash            string `json:"blockhash"`
				LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
			} `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []any{
		map[string]any{"commitment": "processed"},
	}

	if err := c.Call(ctx, "getLatestBlockhash", params, &resp); err != nil {
		return solana.Hash{}, fmt.Errorf("getLatestBlockhash failed: %w", err)
	}
	if resp.Error != nil {
		return solana.Hash{}, fmt.Errorf("getLatestBlockhash error: %s", resp.Error.Message)
	}

	hash, err := solana.HashFromBase58(resp.Result.Value.Blockhash)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("invalid blockhash format: %w", err)
	}
	return hash, nil
}

// GetFeeForMessage returns the network fee in lamports for a compiled,
// base64-encoded transaction message. A nil value from the node falls back
// to the flat per-signature fee.
func (c *Client) GetFeeForMessage(ctx context.Context, encodedMessage string) (uint64, error) {
	var resp struct {
		Result struct {
			Value *uint64 `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []any{
		encodedMessage,
		map[string]any{"commitment": "processed"},
	}

	if err := c.Call(ctx, "getFeeForMessage", params, &resp); err != nil {
		return 0, fmt.Errorf("getFeeForMessage failed: %w", err)
	}
	if resp.Error != nil {
		return 0, fmt.Errorf("getFeeForMessage error: %s", resp.Error.Message)
	}
	if resp.Result.Value == nil {
		return LamportsPerSignature, nil
	}
	return *resp.Result.Value, nil
}

// LamportsPerSignature is the flat base fee used when the node reports none
const LamportsPerSignature = 5000

// GetMinimumBalanceForRentExemption returns the lamports needed to make an
// account of the given size rent exempt
func (c *Client) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	var resp struct {
		Result uint64    `json:"result"`
		Error  *RPCError `json:"error"`
	}

	params := []any{size}

	if err := c.Call(ctx, "getMinimumBalanceForRentExemption", params, &resp); err != nil {
		return 0, fmt.Errorf("getMinimumBalanceForRentExemption failed: %w", err)
	}
	if resp.Error != nil {
		return 0, fmt.Errorf("getMinimumBalanceForRentExemption error: %s", resp.Error.Message)
	}
	return resp.Result, nil
}

// SendEncodedTransaction submits a base64-encoded signed transaction and
// returns its signature
func (c *Client) SendEncodedTransaction(ctx context.Context, encodedTx string) (string, error) {
	var resp struct {
		Result string    `json:"result"`
		Error  *RPCError `json:"error"`
	}

	params := []any{
		encodedTx,
		map[string]any{
			"encoding":            "base64",
			"skipPreflight":       false,
			"preflightCommitment": "processed",
		},
	}

	if err := c.Call(ctx, "sendTransaction", params, &resp); err != nil {
		return "", fmt.Errorf("sendTransaction RPC failed: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("sendTransaction error: code=%d, message=%s", resp.Error.Code, resp.Error.Message)
	}
	return resp.Result, nil
}

// SignatureStatus describes the confirmation state of a submitted transaction
type SignatureStatus struct {
	Processed bool
	Confirmed bool
	Finalized bool
	Err       interface{}
}

// GetSignatureStatus checks how far a signature has progressed, searching
// transaction history so results survive status-cache eviction
func (c *Client) GetSignatureStatus(ctx context.Context, signature string) (*SignatureStatus, error) {
	var resp struct {
		Result struct {
			Value []*struct {
				ConfirmationStatus string      `json:"confirmationStatus"`
				Err                interface{} `json:"err"`
			} `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []any{
		[]string{signature},
		map[string]any{"searchTransactionHistory": true},
	}

	if err := c.Call(ctx, "getSignatureStatuses", params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("getSignatureStatuses error: %s", resp.Error.Message)
	}
	if len(resp.Result.Value) == 0 || resp.Result.Value[0] == nil {
		return nil, nil
	}

	v := resp.Result.Value[0]
	status := &SignatureStatus{
		Processed: v.ConfirmationStatus != "",
		Confirmed: v.ConfirmationStatus == "confirmed" || v.ConfirmationStatus == "finalized",
		Finalized: v.ConfirmationStatus == "finalized",
		Err:       v.Err,
	}
	return status, nil
}
