package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	config "github.com/townbeat/townbeat-go/config"
	"github.com/townbeat/townbeat-go/indexer"
	"github.com/townbeat/townbeat-go/logger"
	models "github.com/townbeat/townbeat-go/models"
	"github.com/townbeat/townbeat-go/rabbitmq"
	utils "github.com/townbeat/townbeat-go/utils"
)

// All handlers here sit behind the admin-only guard; the admin claim
// comes from the verified bearer token.

// ---------------- MODERATION QUEUE ----------------
// Lists events awaiting approval by default; ?all=true lists everything.
func ListModerationQueue(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{}
		if c.Query("all") != "true" {
			filter["is_approved"] = false
		}
		if q := c.Query("q"); q != "" {
			filter["name"] = bson.M{"$regex": q, "$options": "i"}
		}

		col := cfg.Collection("events")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cursor, err := col.Find(ctx, filter, eventSortAsc())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch events"})
			return
		}

		var events []models.Event
		if err := cursor.All(ctx, &events); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode events"})
			return
		}
		if events == nil {
			events = []models.Event{}
		}

		c.JSON(http.StatusOK, events)
	}
}

// ---------------- APPROVE ----------------
// Approving an already-approved event is a no-op success; there is no
// un-approve operation.
func ApproveEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		col := cfg.Collection("events")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := col.UpdateOne(ctx,
			bson.M{"_id": oid},
			bson.M{"$set": bson.M{"is_approved": true, "updated_at": time.Now()}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not approve event"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}

		var event models.Event
		if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&event); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve approved event"})
			return
		}

		publishEvent(cfg, rabbitmq.KeyEventUpdated, event)

		// Notify the submitter outside the request path.
		if event.Email != "" {
			go func(ev models.Event) {
				body := fmt.Sprintf("<p>Your event <b>%s</b> has been approved and is now listed.</p>", ev.Name)
				if err := utils.SendEmail(ev.Email, ev.Name, "Your event is live", body); err != nil {
					logger.WithComponent("admin").Warn("approval email failed", zap.Error(err))
				}
			}(event)
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "event approved",
			"event":   event,
		})
	}
}

// ---------------- REINDEX ----------------
// Bulk re-sync of every event into the search index.
func Reindex(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		count, err := indexer.New(cfg.Collection("events"), cfg.Search).Resync(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "reindex failed", "indexed": count})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "reindex complete", "indexed": count})
	}
}
