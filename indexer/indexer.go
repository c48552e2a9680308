package indexer

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/townbeat/townbeat-go/logger"
	"github.com/townbeat/townbeat-go/models"
	"github.com/townbeat/townbeat-go/rabbitmq"
	"github.com/townbeat/townbeat-go/search"
)

// Indexer mirrors event mutations into the search index. Writes arrive
// as event.* messages; Resync replays the whole collection.
type Indexer struct {
	events *mongo.Collection
	ix     *search.Index
	log    *zap.Logger
}

func New(events *mongo.Collection, ix *search.Index) *Indexer {
	return &Indexer{events: events, ix: ix, log: logger.WithComponent("indexer")}
}

// Start consumes deliveries until the channel closes.
func (i *Indexer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			i.handleMessage(msg)
		}
		i.log.Info("delivery channel closed, indexer stopping")
	}()
}

func (i *Indexer) handleMessage(msg amqp.Delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if msg.RoutingKey == rabbitmq.KeyEventDeleted {
		var payload struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(msg.Body, &payload); err != nil {
			i.log.Error("bad delete payload", zap.Error(err))
			msg.Nack(false, false)
			return
		}
		if err := i.ix.Delete(ctx, payload.ID); err != nil {
			i.log.Error("index delete failed", zap.String("event_id", payload.ID), zap.Error(err))
			msg.Nack(false, true) // requeue
			return
		}
		i.log.Info("index record removed", zap.String("event_id", payload.ID))
		msg.Ack(false)
		return
	}

	var ev models.Event
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		i.log.Error("bad event payload", zap.Error(err))
		msg.Nack(false, false)
		return
	}
	if err := i.ix.Upsert(ctx, ev); err != nil {
		i.log.Error("index upsert failed", zap.String("event_id", ev.ID.Hex()), zap.Error(err))
		msg.Nack(false, true) // requeue
		return
	}
	i.log.Info("index record synced", zap.String("event_id", ev.ID.Hex()), zap.String("key", msg.RoutingKey))
	msg.Ack(false)
}

// Resync bulk-mirrors every event into the index and returns how many
// records were written.
func (i *Indexer) Resync(ctx context.Context) (int, error) {
	if err := i.ix.Ensure(ctx); err != nil {
		return 0, err
	}

	cursor, err := i.events.Find(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		var ev models.Event
		if err := cursor.Decode(&ev); err != nil {
			return count, err
		}
		if err := i.ix.Upsert(ctx, ev); err != nil {
			return count, err
		}
		count++
	}
	if err := cursor.Err(); err != nil {
		return count, err
	}
	i.log.Info("full resync complete", zap.Int("events", count))
	return count, nil
}
