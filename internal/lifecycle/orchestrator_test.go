package lifecycle

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solswap-labs/exchange-core/internal/protocols"
	"github.com/solswap-labs/exchange-core/internal/rpc"
)

type keypairSigner struct {
	priv solana.PrivateKey
}

func newKeypairSigner(t *testing.T) *keypairSigner {
	t.Helper()
	priv, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return &keypairSigner{priv: priv}
}

func (s *keypairSigner) PublicKey() solana.PublicKey { return s.priv.PublicKey() }

func (s *keypairSigner) SignTx(tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.priv.PublicKey()) {
			return &s.priv
		}
		return nil
	})
	return err
}

// fakeSubmitter scripts send and confirmation outcomes. onSend runs inside
// SendEncodedTransaction, letting tests cancel mid-flight.
type fakeSubmitter struct {
	sendErr   error
	onSend    func()
	status    *rpc.SignatureStatus
	statusErr error

	sentCount   int
	statusCalls int
}

func (f *fakeSubmitter) SendEncodedTransaction(ctx context.Context, encodedTx string) (string, error) {
	f.sentCount++
	if f.onSend != nil {
		f.onSend()
	}
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return "testsig111", nil
}

func (f *fakeSubmitter) GetSignatureStatus(ctx context.Context, signature string) (*rpc.SignatureStatus, error) {
	f.statusCalls++
	return f.status, f.statusErr
}

func testBuilder(signer *keypairSigner) TxBuilder {
	return func(ctx context.Context) (*solana.Transaction, error) {
		ix := protocols.NewSystemTransferIx(signer.PublicKey(), signer.PublicKey(), 1)
		return solana.NewTransaction(
			[]solana.Instruction{ix},
			solana.Hash{1},
			solana.TransactionPayer(signer.PublicKey()),
		)
	}
}

func TestExecuteHappyPath(t *testing.T) {
	signer := newKeypairSigner(t)
	chain := &fakeSubmitter{status: &rpc.SignatureStatus{Confirmed: true}}
	orch := New(signer, chain, nil)

	sig, err := orch.Execute(context.Background(), testBuilder(signer))
	require.NoError(t, err)

	assert.Equal(t, "testsig111", sig)
	assert.Equal(t, StatusTransactionFinished, orch.Status())
	assert.Equal(t, sig, orch.Signature())

	transcript := orch.Transcript()
	require.Len(t, transcript, 4)
	assert.Equal(t, Entry{Action: "init", Result: "ok"}, transcript[0])
	assert.Equal(t, Entry{Action: "sign", Result: "ok"}, transcript[1])
	assert.Equal(t, Entry{Action: "send", Result: sig}, transcript[2])
	assert.Equal(t, Entry{Action: "confirm", Result: "ok"}, transcript[3])
}

func TestExecuteNoSigner(t *testing.T) {
	chain := &fakeSubmitter{}
	orch := New(nil, chain, nil)

	_, err := orch.Execute(context.Background(), nil)
	assert.ErrorIs(t, err, protocols.ErrWalletNotFound)
	assert.Equal(t, StatusInitTransactionFailure, orch.Status())
	assert.Zero(t, chain.sentCount)
}

func TestExecuteBuildFailure(t *testing.T) {
	signer := newKeypairSigner(t)
	chain := &fakeSubmitter{}
	orch := New(signer, chain, nil)

	_, err := orch.Execute(context.Background(), func(ctx context.Context) (*solana.Transaction, error) {
		return nil, errors.New("no pool")
	})
	assert.ErrorIs(t, err, ErrInitFailed)
	assert.Equal(t, StatusInitTransactionFailure, orch.Status())
	assert.Zero(t, chain.sentCount)
}

func TestExecuteSendFailureKeepsEncodedTx(t *testing.T) {
	signer := newKeypairSigner(t)
	chain := &fakeSubmitter{sendErr: errors.New("blockhash expired")}
	orch := New(signer, chain, nil)

	_, err := orch.Execute(context.Background(), testBuilder(signer))
	assert.ErrorIs(t, err, ErrSendFailed)
	assert.Equal(t, StatusSendTransactionFailure, orch.Status())
	assert.Zero(t, chain.statusCalls)

	transcript := orch.Transcript()
	require.NotEmpty(t, transcript)
	last := transcript[len(transcript)-1]
	assert.Equal(t, "send", last.Action)
	assert.Contains(t, last.Result, "blockhash expired")
	// The signed payload is preserved for support and manual resubmission.
	assert.Contains(t, last.Result, "encoded_tx=")
}

func TestExecuteCancelBlocksConfirm(t *testing.T) {
	signer := newKeypairSigner(t)
	chain := &fakeSubmitter{status: &rpc.SignatureStatus{Confirmed: true}}
	orch := New(signer, chain, nil)
	chain.onSend = orch.Cancel

	sig, err := orch.Execute(context.Background(), testBuilder(signer))
	assert.ErrorIs(t, err, ErrCancelled)

	// The transaction was already sent: the signature comes back and the
	// status stays at the completed send stage, never entering confirm.
	assert.Equal(t, "testsig111", sig)
	assert.Equal(t, StatusSendTransactionSuccess, orch.Status())
	assert.Zero(t, chain.statusCalls)
}

func TestExecuteCancelBeforeSign(t *testing.T) {
	signer := newKeypairSigner(t)
	chain := &fakeSubmitter{}
	orch := New(signer, chain, nil)

	builder := func(ctx context.Context) (*solana.Transaction, error) {
		orch.Cancel()
		return testBuilder(signer)(ctx)
	}

	_, err := orch.Execute(context.Background(), builder)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, StatusInitTransactionSuccess, orch.Status())
	assert.Zero(t, chain.sentCount)
}

func TestExecuteConfirmTimeoutRescue(t *testing.T) {
	signer := newKeypairSigner(t)
	// The polling window closes immediately; only the rescue check runs and
	// finds the transaction confirmed after all.
	chain := &fakeSubmitter{status: &rpc.SignatureStatus{Confirmed: true}}
	orch := New(signer, chain, nil)
	orch.SetConfirmTimeout(0, time.Millisecond)

	sig, err := orch.Execute(context.Background(), testBuilder(signer))
	require.NoError(t, err)
	assert.Equal(t, "testsig111", sig)
	assert.Equal(t, StatusTransactionFinished, orch.Status())
	assert.Equal(t, 1, chain.statusCalls)
}

func TestExecuteConfirmTimeoutUnrescued(t *testing.T) {
	signer := newKeypairSigner(t)
	chain := &fakeSubmitter{status: &rpc.SignatureStatus{Processed: true}}
	orch := New(signer, chain, nil)
	orch.SetConfirmTimeout(0, time.Millisecond)

	sig, err := orch.Execute(context.Background(), testBuilder(signer))
	assert.ErrorIs(t, err, ErrConfirmFailed)
	assert.Equal(t, "testsig111", sig)
	assert.Equal(t, StatusConfirmTransactionFailure, orch.Status())
}

func TestExecuteConfirmOnChainFailure(t *testing.T) {
	signer := newKeypairSigner(t)
	chain := &fakeSubmitter{status: &rpc.SignatureStatus{
		Confirmed: true,
		Err:       map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}},
	}}
	orch := New(signer, chain, nil)
	orch.SetConfirmTimeout(0, time.Millisecond)

	_, err := orch.Execute(context.Background(), testBuilder(signer))
	assert.ErrorIs(t, err, ErrConfirmFailed)
	assert.True(t, strings.Contains(err.Error(), "failed on-chain"))
}

func TestResetClearsState(t *testing.T) {
	signer := newKeypairSigner(t)
	chain := &fakeSubmitter{status: &rpc.SignatureStatus{Confirmed: true}}
	orch := New(signer, chain, nil)

	_, err := orch.Execute(context.Background(), testBuilder(signer))
	require.NoError(t, err)

	orch.Reset()
	assert.Equal(t, StatusIdle, orch.Status())
	assert.Empty(t, orch.Signature())
	assert.Empty(t, orch.Transcript())
}
