package pricing

import (
	"context"
	"fmt"
	"os"

	"github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/config"
	"github.com/segmentio/kafka-go"
)

type KafkaReader struct {
	reader *kafka.Reader
}

func GetNewReader(topic string) (reader *KafkaReader, err error) {
	// config
	kafkaurl := os.Getenv("KAFKA_BOOKING_URL")
	if kafkaurl == "" {
		return nil, fmt.Errorf("env KAFKA_BOOKING_URL is not set")
	}
	kafkaport := os.Getenv("KAFKA_BOOKING_PORT")
	if kafkaport == "" {
		return nil, fmt.Errorf("env KAFKA_BOOKING_PORT is not set")
	}

	kafkaconfig := kafka.ReaderConfig{
		Brokers: []string{kafkaurl + ":" + kafkaport},
		Topic:   topic,
		GroupID: config.EnvOrDefault("KAFKA_BOOKING_GROUP", "rental_pricing"),
	}
	return &KafkaReader{kafka.NewReader(kafkaconfig)}, nil
}

func (k *KafkaReader) GetNewMessage(ctx context.Context) ([]byte, error) {
	msg, err := k.reader.ReadMessage(ctx)
	if err != nil {
		return nil, err
	}
	return msg.Value, nil
}

func (k *KafkaReader) CloseReader() {
	k.reader.Close()
}
