package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/townbeat/townbeat-go/models"
)

const (
	// KeyPrefix namespaces the mirrored event hashes.
	KeyPrefix = "event:"

	DefaultIndexName = "events_idx"
	maxResults       = 50
)

// Index is the hosted full-text index over denormalized event records.
// It is kept eventually consistent with the events collection by the
// indexer consumer.
type Index struct {
	rdb  *redis.Client
	name string
}

func New(rdb *redis.Client, name string) *Index {
	if name == "" {
		name = DefaultIndexName
	}
	return &Index{rdb: rdb, name: name}
}

// Ensure creates the index if it does not exist yet.
func (ix *Index) Ensure(ctx context.Context) error {
	err := ix.rdb.FTCreate(ctx, ix.name,
		&redis.FTCreateOptions{
			OnHash: true,
			Prefix: []interface{}{KeyPrefix},
		},
		&redis.FieldSchema{FieldName: "name", FieldType: redis.SearchFieldTypeText, Weight: 2},
		&redis.FieldSchema{FieldName: "description", FieldType: redis.SearchFieldTypeText},
		&redis.FieldSchema{FieldName: "address", FieldType: redis.SearchFieldTypeText},
		&redis.FieldSchema{FieldName: "city", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: "category", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: "age_group", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: "is_approved", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: "event_ts", FieldType: redis.SearchFieldTypeNumeric, Sortable: true},
	).Err()
	if err != nil && strings.Contains(err.Error(), "Index already exists") {
		return nil
	}
	return err
}

// Upsert writes the denormalized record keyed by the event id.
func (ix *Index) Upsert(ctx context.Context, ev models.Event) error {
	key := KeyPrefix + ev.ID.Hex()
	approved := "0"
	if ev.IsApproved {
		approved = "1"
	}
	return ix.rdb.HSet(ctx, key, map[string]interface{}{
		"name":        ev.Name,
		"description": ev.Description,
		"address":     ev.Address,
		"city":        ev.City,
		"category":    ev.Category,
		"age_group":   ev.AgeGroup,
		"is_approved": approved,
		"event_ts":    ev.EventDateTime.Unix(),
	}).Err()
}

func (ix *Index) Delete(ctx context.Context, eventID string) error {
	return ix.rdb.Del(ctx, KeyPrefix+eventID).Err()
}

// SearchText runs a free-text query and normalizes the hits. The index
// mirrors unapproved events too, so non-admin callers pass
// approvedOnly to keep the visibility rule intact.
func (ix *Index) SearchText(ctx context.Context, q string, approvedOnly bool) ([]models.EventSummary, error) {
	return ix.search(ctx, scopeQuery(q, approvedOnly))
}

// SearchDay matches events whose instant falls inside the 24-hour window
// starting at midnight of day: inclusive start, exclusive end.
func (ix *Index) SearchDay(ctx context.Context, day time.Time, approvedOnly bool) ([]models.EventSummary, error) {
	return ix.search(ctx, scopeQuery(dayRangeQuery(day), approvedOnly))
}

func scopeQuery(q string, approvedOnly bool) string {
	if approvedOnly {
		return "@is_approved:{1} " + q
	}
	return q
}

func dayRangeQuery(day time.Time) string {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	return fmt.Sprintf("@event_ts:[%d (%d]", start.Unix(), end.Unix())
}

func (ix *Index) search(ctx context.Context, query string) ([]models.EventSummary, error) {
	res, err := ix.rdb.FTSearchWithArgs(ctx, ix.name, query, &redis.FTSearchOptions{
		Limit: maxResults,
		SortBy: []redis.FTSearchSortBy{
			{FieldName: "event_ts", Asc: true},
		},
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("search index query: %w", err)
	}

	summaries := make([]models.EventSummary, 0, len(res.Docs))
	for _, doc := range res.Docs {
		s, err := NormalizeHit(doc)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}
