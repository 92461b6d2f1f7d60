package common

import (
	"github.com/gagliardetto/solana-go"
)

// TransactionRecord is one already-decoded historical transaction as
// delivered by the upstream source. The pipeline consumes it read-only.
type TransactionRecord struct {
	Signature   string             `json:"signature"`
	Slot        uint64             `json:"slot"`
	BlockTime   *int64             `json:"blockTime"`
	IsVote      bool               `json:"isVote"`
	AccountKeys []solana.PublicKey `json:"accountKeys"`
	LogMessages []string           `json:"logMessages"`
}

// OutputRecord is the NDJSON unit written to stdout for every matched
// transaction. Field order is part of the downstream contract.
type OutputRecord struct {
	Signature string   `json:"signature"`
	Slot      uint64   `json:"slot"`
	BlockTime *int64   `json:"blockTime"`
	Logs      []string `json:"logs"`
}

// NewOutputRecord projects a matched transaction into its output form.
func NewOutputRecord(tx *TransactionRecord) OutputRecord {
	logs := tx.LogMessages
	if logs == nil {
		logs = []string{}
	}
	return OutputRecord{
		Signature: tx.Signature,
		Slot:      tx.Slot,
		BlockTime: tx.BlockTime,
		Logs:      logs,
	}
}
