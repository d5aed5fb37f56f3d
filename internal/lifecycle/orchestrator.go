package lifecycle

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/solswap-labs/exchange-core/internal/protocols"
	"github.com/solswap-labs/exchange-core/internal/rpc"
	"github.com/solswap-labs/exchange-core/internal/wallet"
)

// Stage failure sentinels surfaced to callers
var (
	ErrInitFailed    = errors.New("transaction build failed")
	ErrSignFailed    = errors.New("transaction signing failed")
	ErrSendFailed    = errors.New("transaction send failed")
	ErrConfirmFailed = errors.New("transaction confirmation failed")
	ErrCancelled     = errors.New("transaction cancelled")
)

// TxBuilder produces the unsigned transaction for the operation. Adapters'
// GetSwap calls and the wrap/unwrap builders are both used here.
type TxBuilder func(ctx context.Context) (*solana.Transaction, error)

// ChainSubmitter is the submission/confirmation surface of the RPC client
type ChainSubmitter interface {
	SendEncodedTransaction(ctx context.Context, encodedTx string) (string, error)
	GetSignatureStatus(ctx context.Context, signature string) (*rpc.SignatureStatus, error)
}

// Entry is one step of the lifecycle transcript
type Entry struct {
	Action string
	Result string
}

const (
	defaultConfirmTimeout = 60 * time.Second
	defaultPollInterval   = 2 * time.Second
)

// Orchestrator runs one operation at a time through the lifecycle state
// machine. Status, transcript, and the cancellation flag are safe for
// concurrent readers; Execute itself must not be called concurrently.
type Orchestrator struct {
	signer wallet.Signer
	chain  ChainSubmitter
	logger *logrus.Logger

	confirmTimeout time.Duration
	pollInterval   time.Duration

	mu         sync.Mutex
	status     TransactionStatus
	cancelled  bool
	transcript []Entry
	encodedTx  string
	signature  string
}

// New creates an orchestrator bound to a signer and chain submitter
func New(signer wallet.Signer, chain ChainSubmitter, logger *logrus.Logger) *Orchestrator {
	if logger == nil {
		logger = logrus.New()
	}
	return &Orchestrator{
		signer:         signer,
		chain:          chain,
		logger:         logger,
		confirmTimeout: defaultConfirmTimeout,
		pollInterval:   defaultPollInterval,
		status:         StatusIdle,
	}
}

// SetConfirmTimeout overrides how long the confirm stage waits before the
// signature-status rescue
func (o *Orchestrator) SetConfirmTimeout(timeout, poll time.Duration) {
	o.confirmTimeout = timeout
	o.pollInterval = poll
}

// Status returns the current lifecycle state
func (o *Orchestrator) Status() TransactionStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Signature returns the submitted transaction's signature, empty before send
func (o *Orchestrator) Signature() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.signature
}

// Transcript returns a copy of the ordered {action, result} log
func (o *Orchestrator) Transcript() []Entry {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Entry, len(o.transcript))
	copy(out, o.transcript)
	return out
}

// Cancel sets the cancellation flag. The flow aborts before the next stage
// starts; the stage already running is not interrupted.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	o.cancelled = true
	o.mu.Unlock()
}

// Reset returns the orchestrator to Idle, clearing the transcript and the
// cancellation flag. Called when a modal closes or a new operation starts.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.status = StatusIdle
	o.cancelled = false
	o.transcript = nil
	o.encodedTx = ""
	o.signature = ""
	o.mu.Unlock()
}

func (o *Orchestrator) isCancelled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cancelled
}

func (o *Orchestrator) record(action, result string) {
	o.mu.Lock()
	o.transcript = append(o.transcript, Entry{Action: action, Result: result})
	o.mu.Unlock()
}

// transition moves to the next state, enforcing the state machine's edges
func (o *Orchestrator) transition(to TransactionStatus) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !CanTransition(o.status, to) {
		return fmt.Errorf("illegal status transition: %s -> %s", o.status, to)
	}
	o.status = to
	return nil
}

func (o *Orchestrator) must(to TransactionStatus) {
	if err := o.transition(to); err != nil {
		// Edges are driven only by Execute below, so a bad edge is a
		// programming error.
		panic(err)
	}
}

// Execute runs the full lifecycle: build, sign, send, confirm. It returns
// the transaction signature on success. The cancellation flag is checked
// before every stage; an abort leaves the last successful stage recorded and
// returns ErrCancelled.
func (o *Orchestrator) Execute(ctx context.Context, build TxBuilder) (string, error) {
	o.Reset()
	o.must(StatusTransactionStart)

	if o.signer == nil {
		o.must(StatusInitTransaction)
		o.record("init", "wallet not found")
		o.must(StatusInitTransactionFailure)
		return "", protocols.ErrWalletNotFound
	}

	// Build
	o.must(StatusInitTransaction)
	tx, err := build(ctx)
	if err != nil {
		o.record("init", err.Error())
		o.must(StatusInitTransactionFailure)
		return "", fmt.Errorf("%w: %v", ErrInitFailed, err)
	}
	o.record("init", "ok")
	o.must(StatusInitTransactionSuccess)

	if o.isCancelled() {
		return "", ErrCancelled
	}

	// Sign
	o.must(StatusSignTransaction)
	if err := o.signer.SignTx(tx); err != nil {
		o.record("sign", err.Error())
		o.must(StatusSignTransactionFailure)
		return "", fmt.Errorf("%w: %v", ErrSignFailed, err)
	}
	o.record("sign", "ok")
	o.must(StatusSignTransactionSuccess)

	if o.isCancelled() {
		return "", ErrCancelled
	}

	// Send
	o.must(StatusSendTransaction)
	raw, err := tx.MarshalBinary()
	if err != nil {
		o.record("send", err.Error())
		o.must(StatusSendTransactionFailure)
		return "", fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)
	o.mu.Lock()
	o.encodedTx = encoded
	o.mu.Unlock()

	signature, err := o.chain.SendEncodedTransaction(ctx, encoded)
	if err != nil {
		// Keep the encoded transaction in the transcript for support.
		o.record("send", fmt.Sprintf("error=%v encoded_tx=%s", err, encoded))
		o.must(StatusSendTransactionFailure)
		return "", fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	o.mu.Lock()
	o.signature = signature
	o.mu.Unlock()
	o.record("send", signature)
	o.must(StatusSendTransactionSuccess)

	if o.isCancelled() {
		return signature, ErrCancelled
	}

	// Confirm
	o.must(StatusConfirmTransaction)
	if err := o.confirm(ctx, signature); err != nil {
		o.record("confirm", err.Error())
		o.must(StatusConfirmTransactionFailure)
		return signature, fmt.Errorf("%w: %v", ErrConfirmFailed, err)
	}
	o.record("confirm", "ok")
	o.must(StatusConfirmTransactionSuccess)
	o.must(StatusTransactionFinished)

	o.logger.WithFields(logrus.Fields{
		"signature": signature,
	}).Info("transaction finished")
	return signature, nil
}

// confirm polls until the signature is confirmed or the timeout elapses.
// A timeout is rescued by one final explicit signature-status check, since
// the transaction may have landed after the polling window closed.
func (o *Orchestrator) confirm(ctx context.Context, signature string) error {
	deadline := time.Now().Add(o.confirmTimeout)
	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		status, err := o.chain.GetSignatureStatus(ctx, signature)
		if err == nil && status != nil {
			if status.Err != nil {
				return fmt.Errorf("transaction failed on-chain: %v", status.Err)
			}
			if status.Confirmed {
				return nil
			}
		}
		if err != nil {
			o.logger.WithFields(logrus.Fields{
				"signature": signature,
				"error":     err,
			}).Debug("signature status poll failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	// Rescue check after timeout.
	status, err := o.chain.GetSignatureStatus(ctx, signature)
	if err != nil {
		return fmt.Errorf("confirmation timed out and status check failed: %v", err)
	}
	if status == nil {
		return fmt.Errorf("confirmation timed out: signature not found")
	}
	if status.Err != nil {
		return fmt.Errorf("transaction failed on-chain: %v", status.Err)
	}
	if status.Confirmed {
		return nil
	}
	return fmt.Errorf("confirmation timed out before reaching confirmed commitment")
}
