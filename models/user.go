package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserInfo struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DisplayName  string             `bson:"display_name" json:"display_name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	PhotoURL     string             `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	// IsAdmin is only flipped out-of-band, never through the public API.
	IsAdmin   bool      `bson:"is_admin" json:"is_admin"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
