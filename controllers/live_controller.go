package controllers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/townbeat/townbeat-go/config"
	"github.com/townbeat/townbeat-go/middleware"
	models "github.com/townbeat/townbeat-go/models"
	"github.com/townbeat/townbeat-go/realtime"
)

func sseHeaders(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
}

// ---------------- LIVE EVENT LIST ----------------
// Streams full result snapshots for the composed filter query. The
// client resubscribes with new query params when its filters change;
// closing the request tears the old subscription down first.
func LiveEvents(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _ := middleware.SessionFrom(c)

		var filters eventFilters
		if err := c.ShouldBindQuery(&filters); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter, err := buildEventFilter(filters, sess.IsAdmin)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		col := cfg.Collection("events")
		fetch := func(ctx context.Context) ([]models.Event, error) {
			fctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			cursor, err := col.Find(fctx, filter, eventSortAsc())
			if err != nil {
				return nil, err
			}
			var events []models.Event
			if err := cursor.All(fctx, &events); err != nil {
				return nil, err
			}
			return events, nil
		}

		sub, err := realtime.Subscribe(c.Request.Context(), realtime.NewCollectionNotifier(col, nil), fetch)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not open live subscription"})
			return
		}
		defer sub.Close()

		sseHeaders(c)
		c.Stream(func(w io.Writer) bool {
			snap, ok := <-sub.Updates()
			if !ok {
				return false
			}
			if snap.Err != nil {
				c.SSEvent("error", gin.H{"error": snap.Err.Error()})
				return false
			}
			if snap.Docs == nil {
				snap.Docs = []models.Event{}
			}
			c.SSEvent("snapshot", snap.Docs)
			return true
		})
	}
}

// ---------------- LIVE SAVED COUNT ----------------
func LiveSavedCount(cfg *config.Config) gin.HandlerFunc {
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
		fetch := func(ctx context.Context) ([]models.SavedEvent, error) {
			fctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			cursor, err := col.Find(fctx, bson.M{"user_id": userID})
			if err != nil {
				return nil, err
			}
			var saved []models.SavedEvent
			if err := cursor.All(fctx, &saved); err != nil {
				return nil, err
			}
			return saved, nil
		}

		sub, err := realtime.Subscribe(c.Request.Context(), realtime.NewCollectionNotifier(col, nil), fetch)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not open live subscription"})
			return
		}
		defer sub.Close()

		sseHeaders(c)
		c.Stream(func(w io.Writer) bool {
			snap, ok := <-sub.Updates()
			if !ok {
				return false
			}
			if snap.Err != nil {
				c.SSEvent("error", gin.H{"error": snap.Err.Error()})
				return false
			}
			c.SSEvent("count", gin.H{"count": len(snap.Docs)})
			return true
		})
	}
}
