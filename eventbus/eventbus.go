// Copyright 2026 The rollup-core Authors
// This file is part of the rollup-core library.
//
// The rollup-core library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The rollup-core library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the rollup-core library. If not, see <http://www.gnu.org/licenses/>.

// Package eventbus publishes block-lifecycle and restore-progress
// notifications onto Kafka so out-of-scope API servers, explorers, and the
// load-test harness can observe this node without polling storage directly
// (§2, §4.7).
package eventbus

import (
	"encoding/json"
	"sync"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"

	"github.com/l2anchor/rollup-core/config"
	rlog "github.com/l2anchor/rollup-core/log"
)

var logger = rlog.NewModuleLogger(rlog.EventBus)

// Topic names, one per notification kind of §6.
const (
	TopicBlockSealed     = "rollup-core-block-sealed"
	TopicBlockCommitted  = "rollup-core-block-committed"
	TopicBlockVerified   = "rollup-core-block-verified"
	TopicBlockExecuted   = "rollup-core-block-executed"
	TopicRestoreProgress = "rollup-core-restore-progress"
)

// BlockSealedEvent announces that the State Keeper sealed a new block.
type BlockSealedEvent struct {
	BlockNumber uint64 `json:"block_number"`
	NewRoot     string `json:"new_root"`
	OpsCount    int    `json:"ops_count"`
}

// BlockAnchorEvent announces an L1 anchor transition (committed, verified,
// or executed/withdrawals-complete) for a range of blocks.
type BlockAnchorEvent struct {
	FromBlock uint64 `json:"from_block"`
	ToBlock   uint64 `json:"to_block"`
	TxHash    string `json:"tx_hash"`
}

// RestoreProgressEvent announces a Data-Restore phase transition.
type RestoreProgressEvent struct {
	Phase              string `json:"phase"`
	LastWatchedL1Block uint64 `json:"last_watched_l1_block"`
}

// Config is the Kafka connection config this package dials, aliased to the
// aggregate config.EventBusConfig so a loaded TOML file and this package's
// constructor never drift apart.
type Config = config.EventBusConfig

// Bus wraps a sarama.AsyncProducer, publishing JSON-encoded payloads.
// Errors surfaced by the producer's error channel are logged, not
// returned, since publish is a best-effort side channel: a dropped
// notification never blocks the pipeline that emitted it (§5: "no actor
// holds external I/O on its critical path").
type Bus struct {
	producer sarama.AsyncProducer
	prefix   string

	closeOnce sync.Once
	done      chan struct{}
}

// New dials the Kafka brokers and starts draining the producer's success
// and error channels.
func New(cfg Config) (*Bus, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.Return.Errors = true
	saramaCfg.Version = sarama.MaxVersion

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, errors.Wrap(err, "eventbus: dial kafka")
	}

	b := &Bus{producer: producer, prefix: cfg.TopicPrefix, done: make(chan struct{})}
	go b.drain()
	return b, nil
}

func (b *Bus) drain() {
	for {
		select {
		case <-b.producer.Successes():
		case err, ok := <-b.producer.Errors():
			if !ok {
				return
			}
			logger.Error("publish failed", "topic", err.Msg.Topic, "err", err.Err)
		case <-b.done:
			return
		}
	}
}

// Publish JSON-encodes payload and enqueues it on topic. It never blocks
// on a broker round-trip; sarama's async producer buffers internally.
func (b *Bus) Publish(topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "eventbus: marshal payload")
	}
	b.producer.Input() <- &sarama.ProducerMessage{
		Topic: prefixedTopic(b.prefix, topic),
		Value: sarama.ByteEncoder(data),
	}
	return nil
}

func prefixedTopic(prefix, topic string) string {
	if prefix == "" {
		return topic
	}
	return prefix + "-" + topic
}

// PublishBlockSealed publishes a BlockSealedEvent.
func (b *Bus) PublishBlockSealed(ev BlockSealedEvent) error {
	return b.Publish(TopicBlockSealed, ev)
}

// PublishBlockCommitted publishes a BlockAnchorEvent on the commit topic.
func (b *Bus) PublishBlockCommitted(ev BlockAnchorEvent) error {
	return b.Publish(TopicBlockCommitted, ev)
}

// PublishBlockVerified publishes a BlockAnchorEvent on the verify topic.
func (b *Bus) PublishBlockVerified(ev BlockAnchorEvent) error {
	return b.Publish(TopicBlockVerified, ev)
}

// PublishBlockExecuted publishes a BlockAnchorEvent on the execute topic.
func (b *Bus) PublishBlockExecuted(ev BlockAnchorEvent) error {
	return b.Publish(TopicBlockExecuted, ev)
}

// PublishRestoreProgress publishes a RestoreProgressEvent.
func (b *Bus) PublishRestoreProgress(ev RestoreProgressEvent) error {
	return b.Publish(TopicRestoreProgress, ev)
}

// Close stops draining and shuts the underlying producer down.
func (b *Bus) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.done)
		err = b.producer.Close()
	})
	return err
}
