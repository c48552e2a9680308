package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Forum -> Topic -> Post, three levels. No edit or delete lifecycle.
type Forum struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	AuthorID    primitive.ObjectID `bson:"author_id" json:"author_id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

type Topic struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ForumID     primitive.ObjectID `bson:"forum_id" json:"forum_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	AuthorID    primitive.ObjectID `bson:"author_id" json:"author_id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TopicID   primitive.ObjectID `bson:"topic_id" json:"topic_id"`
	Content   string             `bson:"content" json:"content"`
	ImageURL  string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	AuthorID  primitive.ObjectID `bson:"author_id" json:"author_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
