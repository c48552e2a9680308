package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event categories and age groups are closed enums; anything else is
// rejected at bind time.
var (
	Categories = []string{"Music", "Sports", "Arts", "Food", "Community", "Education", "Other"}
	AgeGroups  = []string{"All Ages", "Kids", "Teens", "Adults", "Seniors"}
)

type Event struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedBy     primitive.ObjectID `bson:"created_by" json:"created_by"` // Submitter
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Address       string             `bson:"address,omitempty" json:"address,omitempty"`
	City          string             `bson:"city,omitempty" json:"city,omitempty"`
	Category      string             `bson:"category" json:"category"`
	AgeGroup      string             `bson:"age_group" json:"age_group"`
	EventDateTime time.Time          `bson:"event_date_time" json:"event_date_time"`
	ImageURL      string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Email         string             `bson:"email,omitempty" json:"email,omitempty"`
	Website       string             `bson:"website,omitempty" json:"website,omitempty"`
	IsApproved    bool               `bson:"is_approved" json:"is_approved"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// EventSummary is the lightweight shape returned by search, with the
// timestamp already formatted for display.
type EventSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	Address       string `json:"address"`
	AgeGroup      string `json:"age_group"`
	EventDateTime string `json:"event_date_time"`
}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

func ValidAgeGroup(g string) bool {
	for _, v := range AgeGroups {
		if v == g {
			return true
		}
	}
	return false
}
