package publisher

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/plain"
	config "github.com/zhivkoto/uho-indexing/configs"
	"github.com/zhivkoto/uho-indexing/internal/common"
	"github.com/zhivkoto/uho-indexing/internal/metrics"
)

const defaultTopic = "uho.matched-transactions"

// Publisher mirrors every matched record to a Kafka topic, keyed by
// signature. It is optional: with no brokers configured every call is a
// no-op and the NDJSON stream on stdout stays the single source of truth.
type Publisher struct {
	client *kgo.Client
	topic  string
	mu     sync.RWMutex
}

var (
	instance *Publisher
	once     sync.Once
)

// GetInstance returns the singleton Publisher instance
func GetInstance() *Publisher {
	once.Do(func() {
		instance = &Publisher{}
		if err := instance.initialize(); err != nil {
			log.Error().Err(err).Msg("Failed to initialize publisher")
		}
	})
	return instance
}

func (p *Publisher) initialize() error {
	if !config.Cfg.Publisher.Enabled {
		log.Debug().Msg("Publisher is disabled, skipping initialization")
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if config.Cfg.Publisher.Brokers == "" {
		log.Info().Msg("No Kafka brokers configured, skipping publisher initialization")
		return nil
	}

	p.topic = config.Cfg.Publisher.Topic
	if p.topic == "" {
		p.topic = defaultTopic
	}

	brokers := strings.Split(config.Cfg.Publisher.Brokers, ",")
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ClientID(fmt.Sprintf("uho-backfill-%s", config.Cfg.Filter.Program)),
		kgo.DefaultProduceTopic(p.topic),
		kgo.MetadataMaxAge(60 * time.Second),
		kgo.DialTimeout(10 * time.Second),
	}

	if config.Cfg.Publisher.Username != "" && config.Cfg.Publisher.Password != "" {
		opts = append(opts, kgo.SASL(plain.Auth{
			User: config.Cfg.Publisher.Username,
			Pass: config.Cfg.Publisher.Password,
		}.AsMechanism()))
		tlsDialer := &tls.Dialer{NetDialer: &net.Dialer{Timeout: 10 * time.Second}}
		opts = append(opts, kgo.Dialer(tlsDialer.DialContext))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return fmt.Errorf("failed to create Kafka client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return fmt.Errorf("failed to connect to Kafka: %v", err)
	}
	p.client = client
	return nil
}

// PublishMatch produces one matched record asynchronously. Delivery
// failures are logged, never propagated: Kafka is a mirror, not the
// primary output channel.
func (p *Publisher) PublishMatch(ctx context.Context, record common.OutputRecord) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.client == nil {
		return nil // Skip if no client configured
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to serialize record %s for publishing: %v", record.Signature, err)
	}

	start := time.Now()
	msg := &kgo.Record{
		Key:   []byte(record.Signature),
		Value: data,
	}
	p.client.Produce(ctx, msg, func(_ *kgo.Record, err error) {
		if err != nil {
			log.Error().Err(err).Str("signature", record.Signature).Msg("Failed to publish record to Kafka")
			return
		}
		metrics.PublishedRecords.Inc()
		metrics.PublishDuration.Observe(time.Since(start).Seconds())
	})

	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := p.client.Flush(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to flush publisher before close")
		}
		p.client.Close()
		log.Debug().Msg("Publisher client closed")
	}
	return nil
}
