package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

func newTestServer(t *testing.T, handler func(req rpcRequest) string) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(handler(req)))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(ClientConfig{
		BaseURL:      srv.URL,
		Timeout:      2 * time.Second,
		RetryBackoff: 10 * time.Millisecond,
	})
	return srv, client
}

func TestGetBalance(t *testing.T) {
	_, client := newTestServer(t, func(req rpcRequest) string {
		assert.Equal(t, "getBalance", req.Method)
		return `{"jsonrpc":"2.0","id":1,"result":{"value":1500000000}}`
	})

	lamports, err := client.GetBalance(context.Background(), solana.PublicKey{})
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000_000), lamports)
}

func TestGetAccountInfoMissing(t *testing.T) {
	_, client := newTestServer(t, func(req rpcRequest) string {
		return `{"jsonrpc":"2.0","id":1,"result":{"value":null}}`
	})

	info, err := client.GetAccountInfo(context.Background(), solana.PublicKey{})
	require.NoError(t, err)
	assert.Nil(t, info)

	exists, err := client.AccountExists(context.Background(), solana.PublicKey{})
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGetAccountInfoDecodesData(t *testing.T) {
	_, client := newTestServer(t, func(req rpcRequest) string {
		return `{"jsonrpc":"2.0","id":1,"result":{"value":{
			"lamports":2039280,
			"owner":"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
			"data":["AQID","base64"]}}}`
	})

	info, err := client.GetAccountInfo(context.Background(), solana.PublicKey{})
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, uint64(2_039_280), info.Lamports)
	assert.Equal(t, solana.TokenProgramID, info.Owner)
	assert.Equal(t, []byte{1, 2, 3}, info.Data)
}

func TestGetTokenAccountBalance(t *testing.T) {
	_, client := newTestServer(t, func(req rpcRequest) string {
		return `{"jsonrpc":"2.0","id":1,"result":{"value":{"amount":"123456","decimals":6}}}`
	})

	amount, err := client.GetTokenAccountBalance(context.Background(), solana.PublicKey{})
	require.NoError(t, err)
	assert.Equal(t, uint64(123_456), amount)
}

func TestSendEncodedTransactionError(t *testing.T) {
	_, client := newTestServer(t, func(req rpcRequest) string {
		return `{"jsonrpc":"2.0","id":1,"error":{"code":-32002,"message":"Blockhash not found"}}`
	})

	_, err := client.SendEncodedTransaction(context.Background(), "AAAA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Blockhash not found")
}

func TestGetSignatureStatus(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		_, client := newTestServer(t, func(req rpcRequest) string {
			return `{"jsonrpc":"2.0","id":1,"result":{"value":[{"confirmationStatus":"confirmed","err":null}]}}`
		})
		status, err := client.GetSignatureStatus(context.Background(), "sig")
		require.NoError(t, err)
		require.NotNil(t, status)
		assert.True(t, status.Processed)
		assert.True(t, status.Confirmed)
		assert.False(t, status.Finalized)
		assert.Nil(t, status.Err)
	})

	t.Run("unknown signature", func(t *testing.T) {
		_, client := newTestServer(t, func(req rpcRequest) string {
			return `{"jsonrpc":"2.0","id":1,"result":{"value":[null]}}`
		})
		status, err := client.GetSignatureStatus(context.Background(), "sig")
		require.NoError(t, err)
		assert.Nil(t, status)
	})

	t.Run("failed on-chain", func(t *testing.T) {
		_, client := newTestServer(t, func(req rpcRequest) string {
			return `{"jsonrpc":"2.0","id":1,"result":{"value":[{"confirmationStatus":"finalized","err":{"InstructionError":[0,"Custom"]}}]}}`
		})
		status, err := client.GetSignatureStatus(context.Background(), "sig")
		require.NoError(t, err)
		require.NotNil(t, status)
		assert.True(t, status.Finalized)
		assert.NotNil(t, status.Err)
	})
}

func TestGetFeeForMessageNilFallsBack(t *testing.T) {
	_, client := newTestServer(t, func(req rpcRequest) string {
		return `{"jsonrpc":"2.0","id":1,"result":{"value":null}}`
	})

	fee, err := client.GetFeeForMessage(context.Background(), "AAAA")
	require.NoError(t, err)
	assert.Equal(t, uint64(LamportsPerSignature), fee)
}

func TestCallRetriesTransportFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"value":7}}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		BaseURL:      srv.URL,
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
	})

	lamports, err := client.GetBalance(context.Background(), solana.PublicKey{})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), lamports)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCallMaxRetriesExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		BaseURL:      srv.URL,
		MaxRetries:   1,
		RetryBackoff: time.Millisecond,
	})

	_, err := client.GetBalance(context.Background(), solana.PublicKey{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
}
