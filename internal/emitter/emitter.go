package emitter

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/zhivkoto/uho-indexing/internal/common"
	"github.com/zhivkoto/uho-indexing/internal/metrics"
)

// Emitter writes one NDJSON line per matched record to the primary output
// stream. A mutex scopes each line-write so concurrent workers never
// interleave or truncate lines; serialization happens outside the lock to
// keep the critical section to a single Write call.
type Emitter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Emit serializes the record and appends it to the output stream as one
// atomic line. A serialization or write failure leaves the stream without
// a partial line and is returned to the caller.
func (e *Emitter) Emit(record common.OutputRecord) error {
	start := time.Now()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to serialize record %s: %v", record.Signature, err)
	}
	data = append(data, '\n')

	e.mu.Lock()
	_, err = e.w.Write(data)
	e.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to write record %s: %v", record.Signature, err)
	}

	metrics.EmitDuration.Observe(time.Since(start).Seconds())
	return nil
}
