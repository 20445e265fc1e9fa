package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
	"github.com/johnquangdev/capture-stitcher/pkg/config"
)

// ActionStitch asks for a captured meeting to be processed
const ActionStitch = "stitch_recording"

// Task is the message published on the recording topic
type Task struct {
	Action    string `json:"action"`
	MeetingID string `json:"meeting_id"`
	SessionID string `json:"session_id"`
}

// Validate checks the fields a worker needs
func (t Task) Validate() error {
	if t.MeetingID == "" {
		return fmt.Errorf("meeting_id is required")
	}
	if t.Action != "" && t.Action != ActionStitch {
		return fmt.Errorf("unsupported action %q", t.Action)
	}
	return nil
}

// Enqueuer accepts stitch requests
type Enqueuer interface {
	Enqueue(ctx context.Context, meetingID, sessionID string) (*entities.ProcessingJob, error)
}

// DecodeTask parses a message value
func DecodeTask(value []byte) (Task, error) {
	var task Task
	if err := json.Unmarshal(value, &task); err != nil {
		return Task{}, fmt.Errorf("failed to decode task: %w", err)
	}
	if err := task.Validate(); err != nil {
		return Task{}, err
	}
	return task, nil
}

// messageReader is the part of kafka.Reader the consumer uses
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaConsumer feeds stitch tasks from Kafka into the worker queue
type KafkaConsumer struct {
	reader   messageReader
	enqueuer Enqueuer
	logger   *zap.Logger
}

// NewKafkaConsumer creates a consumer for cfg.Topic
func NewKafkaConsumer(cfg config.KafkaConfig, enqueuer Enqueuer, logger *zap.Logger) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		StartOffset: kafka.LastOffset,
		MinBytes:    10e3, // 10KB
		MaxBytes:    10e6, // 10MB
	})
	return newKafkaConsumer(reader, enqueuer, logger)
}

func newKafkaConsumer(reader messageReader, enqueuer Enqueuer, logger *zap.Logger) *KafkaConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaConsumer{reader: reader, enqueuer: enqueuer, logger: logger}
}

// Start reads messages until ctx is cancelled
func (kc *KafkaConsumer) Start(ctx context.Context) error {
	kc.logger.Info("📡 Kafka consumer started, waiting for messages...")

	for {
		message, err := kc.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				kc.logger.Info("📡 Kafka consumer stopping...")
				return kc.reader.Close()
			}
			kc.logger.Error("❌ Error reading message", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		kc.handle(ctx, message)
	}
}

func (kc *KafkaConsumer) handle(ctx context.Context, message kafka.Message) {
	task, err := DecodeTask(message.Value)
	if err != nil {
		kc.logger.Warn("⏭️ Skipping message",
			zap.Int64("offset", message.Offset),
			zap.Error(err))
		return
	}

	job, err := kc.enqueuer.Enqueue(ctx, task.MeetingID, task.SessionID)
	if err != nil {
		kc.logger.Warn("⚠️ Task not queued",
			zap.String("meeting_id", task.MeetingID),
			zap.Error(err))
		return
	}

	kc.logger.Info("✅ Task queued",
		zap.String("meeting_id", task.MeetingID),
		zap.String("job_id", job.ID.String()))
}

// KafkaProducer publishes stitch tasks
type KafkaProducer struct {
	writer *kafka.Writer
}

// NewKafkaProducer creates a producer for cfg.Topic
func NewKafkaProducer(cfg config.KafkaConfig) (*KafkaProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is not set")
	}
	return &KafkaProducer{writer: &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.Hash{},
	}}, nil
}

// Publish sends a task keyed by meeting ID
func (p *KafkaProducer) Publish(ctx context.Context, task Task) error {
	if task.Action == "" {
		task.Action = ActionStitch
	}
	if err := task.Validate(); err != nil {
		return err
	}
	value, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to encode task: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(task.MeetingID), Value: value}); err != nil {
		return fmt.Errorf("failed to publish task: %w", err)
	}
	return nil
}

// Close flushes pending messages
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
