package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"

	"github.com/mahdiimanzadeh/storetrack/internal/report"
)

type Publisher interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Message is the payload published for every product at or below the threshold.
type Message struct {
	ProductID uuid.UUID `json:"productId"`
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	Stock     int       `json:"stock"`
	Category  string    `json:"category"`
	Threshold int       `json:"threshold"`
	CheckedAt time.Time `json:"checkedAt"`
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

type Worker struct {
	reports   report.Service
	publisher Publisher
	threshold int
	interval  time.Duration
	now       func() time.Time
}

// NewWorker builds a low-stock worker. A nil publisher makes the worker log only.
func NewWorker(reports report.Service, publisher Publisher, threshold int, interval time.Duration) *Worker {
	return &Worker{
		reports:   reports,
		publisher: publisher,
		threshold: threshold,
		interval:  interval,
		now:       time.Now,
	}
}

// Run checks stock once immediately and then on every tick until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	log.Info().Dur("interval", w.interval).Int("threshold", w.threshold).Msg("alert: low stock worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.Check(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("alert: low stock check failed")
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("alert: low stock worker stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (w *Worker) Check(ctx context.Context) ([]report.LowStockItem, error) {
	ctx, span := otel.Tracer("storetrack/alert").Start(ctx, "alert.Check")
	defer span.End()

	items, err := w.reports.LowStockAcrossOwners(ctx, w.threshold)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("alert: low stock query: %w", err)
	}
	span.SetAttributes(attribute.Int("alert.low_stock_count", len(items)))

	if len(items) == 0 {
		return items, nil
	}

	checkedAt := w.now().UTC()
	msgs := make([]kafka.Message, 0, len(items))
	for _, item := range items {
		log.Warn().
			Stringer("product_id", item.ID).
			Stringer("user_id", item.UserID).
			Str("name", item.Name).
			Int("stock", item.Stock).
			Int("threshold", w.threshold).
			Msg("alert: product is low on stock")

		if w.publisher == nil {
			continue
		}
		msg, err := w.message(ctx, item, checkedAt)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}

	if len(msgs) > 0 {
		if err := w.publisher.WriteMessages(ctx, msgs...); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("alert: publish low stock alerts: %w", err)
		}
		log.Info().Int("count", len(msgs)).Msg("alert: low stock alerts published")
	}

	return items, nil
}

func (w *Worker) message(ctx context.Context, item report.LowStockItem, checkedAt time.Time) (kafka.Message, error) {
	payload, err := json.Marshal(Message{
		ProductID: item.ID,
		UserID:    item.UserID,
		Name:      item.Name,
		Stock:     item.Stock,
		Category:  item.Category,
		Threshold: w.threshold,
		CheckedAt: checkedAt,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("alert: encode message: %w", err)
	}

	return kafka.Message{
		Key:     []byte(item.ID.String()),
		Value:   payload,
		Headers: injectHeaders(ctx, nil),
	}, nil
}

func injectHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return headers
}
