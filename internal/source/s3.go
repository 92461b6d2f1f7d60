package source

import (
	"compress/gzip"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
	config "github.com/zhivkoto/uho-indexing/configs"
	"github.com/zhivkoto/uho-indexing/internal/common"
)

// S3Source streams NDJSON transaction dumps from every object under an S3
// prefix, in listing order. Deployments that archive slot-range dumps in
// object storage point the sidecar here instead of at a local file.
type S3Source struct {
	client  *s3.Client
	bucket  string
	prefix  string
	workers int
	rng     slotRange
}

func NewS3Source(cfg *config.SourceConfig, rng *config.RangeConfig) (*S3Source, error) {
	if cfg.S3.Bucket == "" {
		return nil, fmt.Errorf("s3 source requires a bucket")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Source{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  cfg.S3.Bucket,
		prefix:  cfg.S3.Prefix,
		workers: cfg.Workers,
		rng:     slotRange{start: rng.StartSlot, end: rng.EndSlot},
	}, nil
}

func (s *S3Source) Stream(ctx context.Context, handler Handler) error {
	return fanOut(ctx, s.workers, s.produce, handler)
}

func (s *S3Source) produce(ctx context.Context, records chan<- *common.TransactionRecord) error {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to list objects in s3://%s/%s: %v", s.bucket, s.prefix, err)
		}

		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			if err := s.streamObject(ctx, *obj.Key, records); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *S3Source) streamObject(ctx context.Context, key string, records chan<- *common.TransactionRecord) error {
	log.Debug().Str("key", key).Msg("Streaming S3 object")

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to get s3://%s/%s: %v", s.bucket, key, err)
	}
	defer out.Body.Close()

	if strings.HasSuffix(key, ".gz") {
		gz, err := gzip.NewReader(out.Body)
		if err != nil {
			return fmt.Errorf("failed to open gzip object s3://%s/%s: %v", s.bucket, key, err)
		}
		defer gz.Close()
		return decodeLines(ctx, gz, records, s.rng)
	}

	return decodeLines(ctx, out.Body, records, s.rng)
}

func (s *S3Source) Close() {}
