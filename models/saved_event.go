package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SavedEvent is the per-user join record. Its _id is the deterministic
// composite of user and event ids, so the same user can never hold two
// copies of the same event.
type SavedEvent struct {
	ID        string             `bson:"_id" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	EventID   primitive.ObjectID `bson:"event_id" json:"event_id"`
	Event     SavedEventCopy     `bson:"event" json:"event"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// SavedEventCopy is the denormalized display snapshot embedded at save
// time. Admin edits re-propagate into these copies in the same batch as
// the event write.
type SavedEventCopy struct {
	Name          string    `bson:"name" json:"name"`
	Address       string    `bson:"address,omitempty" json:"address,omitempty"`
	City          string    `bson:"city,omitempty" json:"city,omitempty"`
	Category      string    `bson:"category" json:"category"`
	AgeGroup      string    `bson:"age_group" json:"age_group"`
	ImageURL      string    `bson:"image_url,omitempty" json:"image_url,omitempty"`
	EventDateTime time.Time `bson:"event_date_time" json:"event_date_time"`
}

func SavedEventID(userID, eventID primitive.ObjectID) string {
	return userID.Hex() + "_" + eventID.Hex()
}

func SnapshotOf(ev Event) SavedEventCopy {
	return SavedEventCopy{
		Name:          ev.Name,
		Address:       ev.Address,
		City:          ev.City,
		Category:      ev.Category,
		AgeGroup:      ev.AgeGroup,
		ImageURL:      ev.ImageURL,
		EventDateTime: ev.EventDateTime,
	}
}
