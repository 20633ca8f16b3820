package rabbit

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Routing keys publicadas por el POS.
const RKStockChanged = "stock.changed"

type StockChangedPayload struct {
	ProductID int64  `json:"product_id"`
	SoldQty   int32  `json:"sold_qty"`
	SaleID    string `json:"sale_id"`
	AtUnix    int64  `json:"at_unix"`
}

type Rabbit struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	log      zerolog.Logger
}

func New(url, exchange string, log zerolog.Logger) (*Rabbit, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Rabbit{conn: conn, ch: ch, exchange: exchange, log: log}, nil
}

func (r *Rabbit) Close() {
	if r.ch != nil {
		_ = r.ch.Close()
	}
	if r.conn != nil {
		_ = r.conn.Close()
	}
}

func (r *Rabbit) PublishJSON(routingKey string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.ch.PublishWithContext(context.Background(), r.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

// StockChanged implementa el Notifier del motor de checkout. Es
// fire-and-forget: la venta ya está confirmada, una falla aquí solo se
// registra (los listeners de UI refrescan por su cuenta).
func (r *Rabbit) StockChanged(productID int64, soldQty int32, saleID string) {
	payload := StockChangedPayload{
		ProductID: productID,
		SoldQty:   soldQty,
		SaleID:    saleID,
		AtUnix:    time.Now().Unix(),
	}
	if err := r.PublishJSON(RKStockChanged, payload); err != nil {
		r.log.Warn().Err(err).Int64("product", productID).Msg("publish stock.changed failed")
	}
}
