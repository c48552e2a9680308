package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	config "github.com/townbeat/townbeat-go/config"
	"github.com/townbeat/townbeat-go/middleware"
	models "github.com/townbeat/townbeat-go/models"
)

// ---------------- TOGGLE ----------------
// Toggle is a pair of atomic conditional writes keyed by the composite
// id: delete-if-present, otherwise create. A concurrent double save
// collapses into one document via the duplicate-key error.
func ToggleSavedEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.SessionFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID, err := primitive.ObjectIDFromHex(sess.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		var input struct {
			EventID string `json:"event_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		eventID, err := primitive.ObjectIDFromHex(input.EventID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		compositeID := models.SavedEventID(userID, eventID)
		col := cfg.Collection("saved_events")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := col.DeleteOne(ctx, bson.M{"_id": compositeID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not toggle saved event"})
			return
		}
		if res.DeletedCount == 1 {
			c.JSON(http.StatusOK, gin.H{"saved": false, "id": compositeID})
			return
		}

		// Not saved yet: snapshot the event. Only events the caller can
		// see are saveable.
		eventFilter := bson.M{"_id": eventID}
		if !sess.IsAdmin {
			eventFilter["is_approved"] = true
		}
		var event models.Event
		if err := cfg.Collection("events").FindOne(ctx, eventFilter).Decode(&event); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}

		saved := models.SavedEvent{
			ID:        compositeID,
			UserID:    userID,
			EventID:   eventID,
			Event:     models.SnapshotOf(event),
			CreatedAt: time.Now(),
		}
		if _, err := col.InsertOne(ctx, saved); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				// Lost a race against an identical save; same outcome.
				c.JSON(http.StatusOK, gin.H{"saved": true, "id": compositeID})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save event"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"saved": true, "id": compositeID})
	}
}

// ---------------- LIST ----------------
func ListSavedEvents(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.SessionFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID, err := primitive.ObjectIDFromHex(sess.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		col := cfg.Collection("saved_events")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
		cursor, err := col.Find(ctx, bson.M{"user_id": userID}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch saved events"})
			return
		}

		var saved []models.SavedEvent
		if err := cursor.All(ctx, &saved); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode saved events"})
			return
		}
		if saved == nil {
			saved = []models.SavedEvent{}
		}

		c.JSON(http.StatusOK, saved)
	}
}

// ---------------- COUNT ----------------
func CountSavedEvents(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.SessionFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID, err := primitive.ObjectIDFromHex(sess.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		count, err := cfg.Collection("saved_events").CountDocuments(ctx, bson.M{"user_id": userID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not count saved events"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}
