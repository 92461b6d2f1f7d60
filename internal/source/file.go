package source

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	config "github.com/zhivkoto/uho-indexing/configs"
	"github.com/zhivkoto/uho-indexing/internal/common"
)

// FileSource streams NDJSON transaction dumps from a local file, or from
// stdin when no path is configured, so the sidecar can sit at the end of a
// pipe. Files ending in .gz are decompressed on the fly.
type FileSource struct {
	path    string
	workers int
	rng     slotRange
}

func NewFileSource(cfg *config.SourceConfig, rng *config.RangeConfig) *FileSource {
	return &FileSource{
		path:    cfg.File.Path,
		workers: cfg.Workers,
		rng:     slotRange{start: rng.StartSlot, end: rng.EndSlot},
	}
}

func (s *FileSource) Stream(ctx context.Context, handler Handler) error {
	return fanOut(ctx, s.workers, s.produce, handler)
}

func (s *FileSource) produce(ctx context.Context, records chan<- *common.TransactionRecord) error {
	var r io.Reader
	if s.path == "" || s.path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(s.path)
		if err != nil {
			return fmt.Errorf("failed to open source file: %v", err)
		}
		defer f.Close()
		r = f

		if strings.HasSuffix(s.path, ".gz") {
			gz, err := gzip.NewReader(f)
			if err != nil {
				return fmt.Errorf("failed to open gzip source file: %v", err)
			}
			defer gz.Close()
			r = gz
		}
	}

	return decodeLines(ctx, r, records, s.rng)
}

func (s *FileSource) Close() {}
