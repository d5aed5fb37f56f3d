// Package lifecycle drives a transaction through build, sign, send, and
// confirm, with cancellation checked between stages and a structured
// transcript of every step.
package lifecycle

import "fmt"

// TransactionStatus is the lifecycle state of one user-initiated operation
type TransactionStatus int

const (
	StatusIdle TransactionStatus = iota
	StatusTransactionStart
	StatusInitTransaction
	StatusInitTransactionSuccess
	StatusInitTransactionFailure
	StatusSignTransaction
	StatusSignTransactionSuccess
	StatusSignTransactionFailure
	StatusSendTransaction
	StatusSendTransactionSuccess
	StatusSendTransactionFailure
	StatusConfirmTransaction
	StatusConfirmTransactionSuccess
	StatusConfirmTransactionFailure
	StatusTransactionFinished
)

var statusNames = map[TransactionStatus]string{
	StatusIdle:                      "Idle",
	StatusTransactionStart:          "TransactionStart",
	StatusInitTransaction:           "InitTransaction",
	StatusInitTransactionSuccess:    "InitTransactionSuccess",
	StatusInitTransactionFailure:    "InitTransactionFailure",
	StatusSignTransaction:           "SignTransaction",
	StatusSignTransactionSuccess:    "SignTransactionSuccess",
	StatusSignTransactionFailure:    "SignTransactionFailure",
	StatusSendTransaction:           "SendTransaction",
	StatusSendTransactionSuccess:    "SendTransactionSuccess",
	StatusSendTransactionFailure:    "SendTransactionFailure",
	StatusConfirmTransaction:        "ConfirmTransaction",
	StatusConfirmTransactionSuccess: "ConfirmTransactionSuccess",
	StatusConfirmTransactionFailure: "ConfirmTransactionFailure",
	StatusTransactionFinished:       "TransactionFinished",
}

func (s TransactionStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("TransactionStatus(%d)", int(s))
}

// IsTerminal reports whether no further transition is possible except a reset
// to Idle
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case StatusInitTransactionFailure,
		StatusSignTransactionFailure,
		StatusSendTransactionFailure,
		StatusConfirmTransactionFailure,
		StatusTransactionFinished:
		return true
	}
	return false
}

// validTransitions enumerates every legal edge. Resetting to Idle is allowed
// from any state and handled separately.
var validTransitions = map[TransactionStatus][]TransactionStatus{
	StatusIdle:                      {StatusTransactionStart},
	StatusTransactionStart:          {StatusInitTransaction},
	StatusInitTransaction:           {StatusInitTransactionSuccess, StatusInitTransactionFailure},
	StatusInitTransactionSuccess:    {StatusSignTransaction},
	StatusSignTransaction:           {StatusSignTransactionSuccess, StatusSignTransactionFailure},
	StatusSignTransactionSuccess:    {StatusSendTransaction},
	StatusSendTransaction:           {StatusSendTransactionSuccess, StatusSendTransactionFailure},
	StatusSendTransactionSuccess:    {StatusConfirmTransaction},
	StatusConfirmTransaction:        {StatusConfirmTransactionSuccess, StatusConfirmTransactionFailure},
	StatusConfirmTransactionSuccess: {StatusTransactionFinished},
}

// CanTransition reports whether moving from -> to is a legal edge
func CanTransition(from, to TransactionStatus) bool {
	if to == StatusIdle {
		return true
	}
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
