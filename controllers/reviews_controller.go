package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/townbeat/townbeat-go/apperrors"
	config "github.com/townbeat/townbeat-go/config"
	"github.com/townbeat/townbeat-go/middleware"
	models "github.com/townbeat/townbeat-go/models"
)

// ---------------- CREATE ----------------
func CreateReview(cfg *config.Config) gin.HandlerFunc {
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

		eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		var input struct {
			Rating int    `json:"rating"`
			Text   string `json:"text"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		eventFilter := bson.M{"_id": eventID}
		if !sess.IsAdmin {
			eventFilter["is_approved"] = true
		}
		var event models.Event
		if err := cfg.Collection("events").FindOne(ctx, eventFilter).Decode(&event); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}

		// Reviews open one hour after the event starts, on the boundary
		// instant itself.
		if !canReview(event.EventDateTime, time.Now()) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": apperrors.ErrReviewTooEarly.Error()})
			return
		}
		if !validReviewInput(input.Rating, input.Text) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "rating 1-5 and review text of at least 10 characters required"})
			return
		}

		now := time.Now()
		review := models.Review{
			ID:        primitive.NewObjectID(),
			EventID:   eventID,
			UserID:    userID,
			Rating:    input.Rating,
			Text:      input.Text,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if _, err := cfg.Collection("reviews").InsertOne(ctx, review); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create review"})
			return
		}

		c.JSON(http.StatusCreated, review)
	}
}

// ---------------- LIST ----------------
func ListEventReviews(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
		cursor, err := cfg.Collection("reviews").Find(ctx, bson.M{"event_id": eventID}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch reviews"})
			return
		}

		var reviews []models.Review
		if err := cursor.All(ctx, &reviews); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode reviews"})
			return
		}
		if reviews == nil {
			reviews = []models.Review{}
		}

		c.JSON(http.StatusOK, reviews)
	}
}
