package emitter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhivkoto/uho-indexing/internal/common"
)

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("stream closed")
}

func TestEmitter_WritesOneLinePerRecord(t *testing.T) {
	out := &bytes.Buffer{}
	em := NewEmitter(out)

	blockTime := int64(1700000000)
	err := em.Emit(common.OutputRecord{
		Signature: "sig-1",
		Slot:      123,
		BlockTime: &blockTime,
		Logs:      []string{"Program log: invoke", "Program X: success"},
	})
	require.NoError(t, err)

	line := out.String()
	assert.True(t, strings.HasSuffix(line, "\n"))
	assert.Equal(t, `{"signature":"sig-1","slot":123,"blockTime":1700000000,"logs":["Program log: invoke","Program X: success"]}`+"\n", line)
}

func TestEmitter_NullBlockTime(t *testing.T) {
	out := &bytes.Buffer{}
	em := NewEmitter(out)

	err := em.Emit(common.OutputRecord{
		Signature: "sig-2",
		Slot:      456,
		Logs:      []string{},
	})
	require.NoError(t, err)

	assert.Equal(t, `{"signature":"sig-2","slot":456,"blockTime":null,"logs":[]}`+"\n", out.String())
}

func TestEmitter_ConcurrentEmitsNeverInterleave(t *testing.T) {
	// Capture the stream under heavy concurrency and verify every line is
	// an independently parseable unit
	out := &bytes.Buffer{}
	em := NewEmitter(out)

	const goroutines = 32
	const perGoroutine = 50

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				err := em.Emit(common.OutputRecord{
					Signature: fmt.Sprintf("sig-%d-%d", worker, j),
					Slot:      uint64(j),
					Logs:      []string{strings.Repeat("Program log: data ", 50)},
				})
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, goroutines*perGoroutine)

	seen := make(map[string]bool)
	for _, line := range lines {
		var record common.OutputRecord
		require.NoError(t, json.Unmarshal([]byte(line), &record), "line should be complete JSON: %s", line)
		assert.False(t, seen[record.Signature], "signature emitted twice: %s", record.Signature)
		seen[record.Signature] = true
	}
}

func TestEmitter_WriteFailureIsReturned(t *testing.T) {
	em := NewEmitter(failingWriter{})

	err := em.Emit(common.OutputRecord{Signature: "sig-3", Slot: 1})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sig-3")
}
