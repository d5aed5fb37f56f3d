package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionHappyPath(t *testing.T) {
	path := []TransactionStatus{
		StatusIdle,
		StatusTransactionStart,
		StatusInitTransaction,
		StatusInitTransactionSuccess,
		StatusSignTransaction,
		StatusSignTransactionSuccess,
		StatusSendTransaction,
		StatusSendTransactionSuccess,
		StatusConfirmTransaction,
		StatusConfirmTransactionSuccess,
		StatusTransactionFinished,
	}
	for i := 1; i < len(path); i++ {
		assert.True(t, CanTransition(path[i-1], path[i]),
			"%s -> %s must be legal", path[i-1], path[i])
	}
}

func TestCanTransitionRejectsSkips(t *testing.T) {
	assert.False(t, CanTransition(StatusIdle, StatusSendTransaction))
	assert.False(t, CanTransition(StatusTransactionStart, StatusSignTransaction))
	assert.False(t, CanTransition(StatusInitTransactionSuccess, StatusSendTransaction))
	assert.False(t, CanTransition(StatusSendTransactionSuccess, StatusTransactionFinished))
	// No edges leave a failure state except the reset.
	assert.False(t, CanTransition(StatusInitTransactionFailure, StatusSignTransaction))
	assert.False(t, CanTransition(StatusSendTransactionFailure, StatusConfirmTransaction))
}

func TestCanTransitionResetFromAnywhere(t *testing.T) {
	for s := range statusNames {
		assert.True(t, CanTransition(s, StatusIdle), "%s -> Idle must be legal", s)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StatusTransactionFinished.IsTerminal())
	assert.True(t, StatusInitTransactionFailure.IsTerminal())
	assert.True(t, StatusSignTransactionFailure.IsTerminal())
	assert.True(t, StatusSendTransactionFailure.IsTerminal())
	assert.True(t, StatusConfirmTransactionFailure.IsTerminal())

	assert.False(t, StatusIdle.IsTerminal())
	assert.False(t, StatusConfirmTransaction.IsTerminal())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "Idle", StatusIdle.String())
	assert.Equal(t, "TransactionFinished", StatusTransactionFinished.String())
	assert.Equal(t, "TransactionStatus(99)", TransactionStatus(99).String())
}
