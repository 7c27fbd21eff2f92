package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/segmentio/kafka-go"

	"github.com/feupindustrial/erp-orders-service/internal/domain"
)

type Producer struct {
	w *kafka.Writer
}

func NewProducer(brokersSTR, topic string) *Producer {
	brokers := strings.Split(brokersSTR, ",")

	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
		},
	}
}

func (p *Producer) Close() error {
	return p.w.Close()
}

// PublishSubmission puts one order submission on the topic. Keyed by
// (nif, orderID) so resubmissions of the same order land on one partition.
func (p *Producer) PublishSubmission(ctx context.Context, req domain.OrderRequest) error {
	b, err := json.Marshal(req)
	if err != nil {
		return err
	}

	key := []byte(strconv.FormatInt(req.NIF, 10) + ":" + strconv.FormatInt(req.OrderID, 10))
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: b,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	})
}
