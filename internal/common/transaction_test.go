package common

import (
	"encoding/json"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOutputRecord_ProjectsFields(t *testing.T) {
	blockTime := int64(1700000000)
	tx := &TransactionRecord{
		Signature:   "sig",
		Slot:        42,
		BlockTime:   &blockTime,
		LogMessages: []string{"one", "two"},
	}

	record := NewOutputRecord(tx)
	assert.Equal(t, "sig", record.Signature)
	assert.Equal(t, uint64(42), record.Slot)
	assert.Equal(t, &blockTime, record.BlockTime)
	assert.Equal(t, []string{"one", "two"}, record.Logs)
}

func TestNewOutputRecord_NilLogsBecomeEmpty(t *testing.T) {
	record := NewOutputRecord(&TransactionRecord{Signature: "sig", Slot: 1})

	data, err := json.Marshal(record)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"logs":[]`)
}

func TestTransactionRecord_DecodesFromDumpLine(t *testing.T) {
	line := `{"signature":"abc","slot":123,"blockTime":456,"isVote":false,"accountKeys":["TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"],"logMessages":["Program log: hi"]}`

	var tx TransactionRecord
	require.NoError(t, json.Unmarshal([]byte(line), &tx))

	assert.Equal(t, "abc", tx.Signature)
	assert.Equal(t, uint64(123), tx.Slot)
	require.NotNil(t, tx.BlockTime)
	assert.Equal(t, int64(456), *tx.BlockTime)
	assert.Equal(t, solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"), tx.AccountKeys[0])
	assert.Equal(t, []string{"Program log: hi"}, tx.LogMessages)
}
