package stats

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_NoLostUpdatesUnderConcurrency(t *testing.T) {
	// N concurrent RecordSeen calls must leave processed at exactly N
	tracker := NewTracker(0, &bytes.Buffer{})

	const goroutines = 16
	const perGoroutine = 1000

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(base uint64) {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				tracker.RecordSeen(base + uint64(j))
				tracker.RecordMatched()
			}
		}(uint64(i * perGoroutine))
	}
	wg.Wait()

	assert.Equal(t, uint64(goroutines*perGoroutine), tracker.Processed())
	assert.Equal(t, uint64(goroutines*perGoroutine), tracker.Matched())
}

func TestTracker_ReportsOnThresholdMultiple(t *testing.T) {
	out := &bytes.Buffer{}
	tracker := NewTracker(5, out)

	for i := 0; i < 5; i++ {
		processed := tracker.RecordSeen(uint64(100 + i))
		tracker.MaybeReport(processed)
	}
	tracker.RecordMatched()

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1)
	require.True(t, strings.HasPrefix(lines[0], "PROGRESS:"))

	var snapshot map[string]uint64
	err := json.Unmarshal([]byte(strings.TrimPrefix(lines[0], "PROGRESS:")), &snapshot)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), snapshot["processed"])
	assert.Equal(t, uint64(0), snapshot["matched"]) // matched after the report
	assert.Equal(t, uint64(104), snapshot["currentSlot"])
}

func TestTracker_DoesNotReportOffThreshold(t *testing.T) {
	out := &bytes.Buffer{}
	tracker := NewTracker(100, out)

	for i := 0; i < 99; i++ {
		processed := tracker.RecordSeen(uint64(i))
		tracker.MaybeReport(processed)
	}

	assert.Empty(t, out.String())
}

func TestTracker_ZeroProcessedNeverReports(t *testing.T) {
	out := &bytes.Buffer{}
	tracker := NewTracker(5, out)

	tracker.MaybeReport(0)

	assert.Empty(t, out.String())
}

func TestTracker_LastSlotIsLastWriteWins(t *testing.T) {
	tracker := NewTracker(0, &bytes.Buffer{})

	tracker.RecordSeen(500)
	tracker.RecordSeen(300) // a worker that is behind may land last
	assert.Equal(t, uint64(300), tracker.LastSlot())
}

func TestTracker_DoneLine(t *testing.T) {
	out := &bytes.Buffer{}
	tracker := NewTracker(0, out)

	tracker.Done()

	assert.Equal(t, "DONE:{\"status\":\"completed\"}\n", out.String())
}

func TestTracker_DefaultThreshold(t *testing.T) {
	tracker := NewTracker(0, &bytes.Buffer{})
	assert.Equal(t, uint64(DefaultReportThreshold), tracker.threshold)
}
