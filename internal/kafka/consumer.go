package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/feupindustrial/erp-orders-service/internal/application"
	"github.com/feupindustrial/erp-orders-service/internal/domain"
	"github.com/feupindustrial/erp-orders-service/internal/logger"
)

type ConsumerConfig struct {
	Brokers string
	Topic   string
	GroupID string
}

// StartConsumer reads client order submissions off the topic and feeds them
// to intake. Malformed messages are committed and skipped; a store failure
// leaves the message uncommitted so it is retried after a short backoff.
func StartConsumer(ctx context.Context, svc *application.OrdersService, cfg ConsumerConfig) (*kafka.Reader, error) {
	brokers := strings.Split(cfg.Brokers, ",")

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:         brokers,
		GroupID:         cfg.GroupID,
		Topic:           cfg.Topic,
		MinBytes:        1,
		MaxBytes:        10e6,
		CommitInterval:  0,
		StartOffset:     kafka.FirstOffset,
		ReadLagInterval: -1,
	})

	logger.Info("kafka consumer starting", "brokers", cfg.Brokers, "topic", cfg.Topic, "group", cfg.GroupID)

	go func() {
		defer r.Close()

		backoff := 300 * time.Millisecond
		for {
			m, err := r.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("kafka fetch error", "err", err)
				time.Sleep(backoff)
				continue
			}

			var req domain.OrderRequest
			if err = json.Unmarshal(m.Value, &req); err != nil {
				logger.Warn("kafka invalid json, skip and commit", "partition", m.Partition, "offset", m.Offset, "err", err)
				_ = r.CommitMessages(ctx, m)
				continue
			}

			if err = svc.ProcessOrder(ctx, req); err != nil {
				logger.Warn("kafka order intake failed, will retry", "nif", req.NIF, "orderID", req.OrderID, "err", err)
				time.Sleep(backoff)
				continue
			}

			if err = r.CommitMessages(ctx, m); err != nil {
				logger.Warn("kafka commit failed", "err", err)
			}
		}
	}()
	return r, nil
}
