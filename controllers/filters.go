package controllers

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/townbeat/townbeat-go/apperrors"
	models "github.com/townbeat/townbeat-go/models"
)

// eventFilters is the optional criteria set for event listing. Absent
// fields impose no predicate.
type eventFilters struct {
	Category string `form:"category"`
	AgeGroup string `form:"age_group"`
	City     string `form:"city"`
	Month    string `form:"month"` // "MonthName-Year", e.g. February-2024
}

// buildEventFilter composes the server-side filter. Non-admin viewers
// are always restricted to approved events; admins never are.
func buildEventFilter(f eventFilters, isAdmin bool) (bson.M, error) {
	filter := bson.M{}
	if !isAdmin {
		filter["is_approved"] = true
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.AgeGroup != "" {
		filter["age_group"] = f.AgeGroup
	}
	if f.City != "" {
		filter["city"] = f.City
	}
	if f.Month != "" {
		start, end, err := monthRange(f.Month)
		if err != nil {
			return nil, err
		}
		filter["event_date_time"] = bson.M{"$gte": start, "$lte": end}
	}
	return filter, nil
}

// monthRange translates a "MonthName-Year" label into the inclusive
// [first 00:00:00, last 23:59:59] range of that calendar month.
func monthRange(label string) (time.Time, time.Time, error) {
	t, err := time.Parse("January-2006", label)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidMonthLabel, label)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end, nil
}

// eventSortAsc is the one ordering the listing surface exposes.
func eventSortAsc() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "event_date_time", Value: 1}})
}

// eventUpdateInput is the optional field set for an event edit. Absent
// fields leave both the event and its saved copies untouched.
type eventUpdateInput struct {
	Name          string `form:"name"`
	Description   string `form:"description"`
	Address       string `form:"address"`
	City          string `form:"city"`
	Category      string `form:"category"`
	AgeGroup      string `form:"age_group"`
	EventDateTime string `form:"event_date_time"`
	Email         string `form:"email"`
	Website       string `form:"website"`
}

// buildEventUpdate composes the two $set documents for an edit: one for
// the event itself and one for its denormalized saved copies, keyed
// under the embedded "event." prefix. Display fields propagate into
// every copy; description and contact fields stay on the event alone.
func buildEventUpdate(in eventUpdateInput, now time.Time) (bson.M, bson.M, error) {
	update := bson.M{"updated_at": now}
	copyUpdate := bson.M{}

	if in.Name != "" {
		update["name"] = in.Name
		copyUpdate["event.name"] = in.Name
	}
	if in.Description != "" {
		update["description"] = in.Description
	}
	if in.Address != "" {
		update["address"] = in.Address
		copyUpdate["event.address"] = in.Address
	}
	if in.City != "" {
		update["city"] = in.City
		copyUpdate["event.city"] = in.City
	}
	if in.Category != "" {
		if !models.ValidCategory(in.Category) {
			return nil, nil, errors.New("unknown category")
		}
		update["category"] = in.Category
		copyUpdate["event.category"] = in.Category
	}
	if in.AgeGroup != "" {
		if !models.ValidAgeGroup(in.AgeGroup) {
			return nil, nil, errors.New("unknown age group")
		}
		update["age_group"] = in.AgeGroup
		copyUpdate["event.age_group"] = in.AgeGroup
	}
	if in.EventDateTime != "" {
		when, err := parseEventTime(in.EventDateTime)
		if err != nil {
			return nil, nil, errors.New("invalid event_date_time, use RFC3339 or YYYY-MM-DD")
		}
		update["event_date_time"] = when
		copyUpdate["event.event_date_time"] = when
	}
	if in.Email != "" {
		update["email"] = in.Email
	}
	if in.Website != "" {
		update["website"] = in.Website
	}
	return update, copyUpdate, nil
}
