package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	kafka "github.com/segmentio/kafka-go"

	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/model"
	"github.com/k1s0-platform/service-server-go-drinks/internal/infra/config"
)

// messageWriter は Kafka Writer の抽象インターフェース。
// テスト時にモックへ差し替え可能にする。
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// brokerDialer はブローカーへの疎通確認に使う。
type brokerDialer func(ctx context.Context, network, address string) (*kafka.Conn, error)

// DrinkEventProducer はドリンク変更イベントを配信する Kafka プロデューサー。
type DrinkEventProducer struct {
	writer  messageWriter
	topic   string
	brokers []string
	dial    brokerDialer
}

// NewDrinkEventProducer は新しい DrinkEventProducer を作成する。
func NewDrinkEventProducer(cfg config.KafkaConfig) *DrinkEventProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: false,
	}
	return &DrinkEventProducer{
		writer:  w,
		topic:   cfg.Topic,
		brokers: cfg.Brokers,
		dial:    kafka.DialContext,
	}
}

// Publish は変更イベントを JSON で配信する。パーティションキーはドリンク id。
func (p *DrinkEventProducer) Publish(ctx context.Context, event *model.DrinkChangeEvent) error {
	if event == nil {
		return errors.New("drink change event is nil")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize drink change event: %w", err)
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(strconv.FormatInt(event.DrinkID, 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "change_type", Value: []byte(event.ChangeType)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish drink change event: %w", err)
	}
	return nil
}

// Healthy はいずれかのブローカーへ接続できるか確認する。
func (p *DrinkEventProducer) Healthy(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}

	var lastErr error
	for _, broker := range p.brokers {
		conn, err := p.dial(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		_ = conn.Close()
		return nil
	}
	return fmt.Errorf("kafka brokers unreachable: %w", lastErr)
}

// Close はプロデューサーを閉じる。
func (p *DrinkEventProducer) Close() error {
	return p.writer.Close()
}
