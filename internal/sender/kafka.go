package sender

import (
	"context"
	"errors"

	"record-splitter/internal/partitioner"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var ErrInvalidKafkaConfig = errors.New("kafka broker and topic are required")

type KafkaConfig struct {
	Broker string
	Topic  string
	RunID  string
}

// KafkaSender публикует каждый набор отдельным сообщением.
// Ключ сообщения - идентификатор набора, значение - JSON SetMessage.
type KafkaSender struct {
	writer KafkaWriter
	runID  string
}

var _ Sender = (*KafkaSender)(nil)

func NewKafkaSender(cfg KafkaConfig) (*KafkaSender, error) {
	if cfg.Broker == "" || cfg.Topic == "" {
		return nil, ErrInvalidKafkaConfig
	}

	return &KafkaSender{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Broker),
			Topic:                  cfg.Topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
		runID: cfg.RunID,
	}, nil
}

// Send синхронно сериализует набор и отправляет его через KafkaWriter.
func (s *KafkaSender) Send(ctx context.Context, set partitioner.Set) error {
	m := newSetMessage(set)

	b, err := m.Bytes()
	if err != nil {
		zap.L().Error(err.Error())
		return err
	}

	msg := kafka.Message{
		Key:   []byte(set.ID),
		Value: b,
	}
	if s.runID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: runIDHeader, Value: []byte(s.runID)})
	}

	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		zap.L().Error(err.Error(), zap.String("set", set.ID))
		return err
	}

	return nil
}

func (s *KafkaSender) Close() error {
	return s.writer.Close()
}
