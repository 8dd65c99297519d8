// Package trigger notifies downstream projection services that a player's
// assumptions changed.
package trigger

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/segmentio/kafka-go"

	"github.com/ppiankov/injurywire/internal/model"
)

// Trigger requests a projection recompute for a player
type Trigger interface {
	Notify(ctx context.Context, playerID int64, a model.Assumption) error
}

// Event is the recompute request payload
type Event struct {
	PlayerID   int64            `json:"player_id"`
	GameID     string           `json:"game_id,omitempty"`
	Reason     string           `json:"reason"`
	Assumption model.Assumption `json:"assumption"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaTrigger publishes recompute events keyed by player id, so events
// for one player stay ordered on one partition.
type KafkaTrigger struct {
	writer messageWriter
	Topic  string
}

// NewKafkaTrigger creates a trigger writing to cfg.Topic
func NewKafkaTrigger(cfg model.KafkaConfig) *KafkaTrigger {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		RequiredAcks:           kafka.RequireAll,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaTrigger{writer: writer, Topic: cfg.Topic}
}

func (t *KafkaTrigger) Notify(ctx context.Context, playerID int64, a model.Assumption) error {
	value, err := json.Marshal(Event{
		PlayerID:   playerID,
		GameID:     a.GameID,
		Reason:     a.Reason,
		Assumption: a,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(playerID, 10)),
		Value: value,
	}
	if err := t.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (t *KafkaTrigger) Close() error {
	return t.writer.Close()
}

// LogTrigger records recompute requests in the log only
type LogTrigger struct {
	logger *log.Logger
}

// NewLogTrigger creates a log-only trigger
func NewLogTrigger(logger *log.Logger) *LogTrigger {
	return &LogTrigger{logger: logger.WithPrefix("trigger")}
}

func (t *LogTrigger) Notify(ctx context.Context, playerID int64, a model.Assumption) error {
	t.logger.Info("recompute requested", "player_id", playerID, "game_id", a.GameID, "reason", a.Reason)
	return nil
}

// FromConfig returns a Kafka trigger when enabled, else a log trigger
func FromConfig(cfg model.KafkaConfig, logger *log.Logger) Trigger {
	if cfg.Enabled && len(cfg.Brokers) > 0 && cfg.Topic != "" {
		return NewKafkaTrigger(cfg)
	}
	return NewLogTrigger(logger)
}
