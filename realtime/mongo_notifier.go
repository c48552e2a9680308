package realtime

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionNotifier adapts a Mongo change stream to the Notifier
// interface. Notifications are coalesced: the subscriber re-fetches the
// latest state anyway, so dropping intermediate signals is safe.
type CollectionNotifier struct {
	coll     *mongo.Collection
	pipeline mongo.Pipeline

	mu  sync.Mutex
	err error
}

func NewCollectionNotifier(coll *mongo.Collection, pipeline mongo.Pipeline) *CollectionNotifier {
	if pipeline == nil {
		pipeline = mongo.Pipeline{}
	}
	return &CollectionNotifier{coll: coll, pipeline: pipeline}
}

func (n *CollectionNotifier) Changes(ctx context.Context) (<-chan struct{}, error) {
	cs, err := n.coll.Watch(ctx, n.pipeline)
	if err != nil {
		return nil, err
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		defer cs.Close(context.Background())

		for cs.Next(ctx) {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
		if ctx.Err() == nil {
			n.setErr(cs.Err())
		}
	}()
	return ch, nil
}

func (n *CollectionNotifier) Err() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.err
}

func (n *CollectionNotifier) setErr(err error) {
	n.mu.Lock()
	n.err = err
	n.mu.Unlock()
}
