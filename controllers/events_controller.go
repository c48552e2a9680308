package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/townbeat/townbeat-go/apperrors"
	config "github.com/townbeat/townbeat-go/config"
	"github.com/townbeat/townbeat-go/logger"
	"github.com/townbeat/townbeat-go/middleware"
	models "github.com/townbeat/townbeat-go/models"
	"github.com/townbeat/townbeat-go/rabbitmq"
	utils "github.com/townbeat/townbeat-go/utils"
)

// publishEvent mirrors a mutation toward the search indexer. The index
// is eventually consistent, so a publish failure is logged, not
// surfaced to the caller.
func publishEvent(cfg *config.Config, key string, payload any) {
	if cfg.Publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cfg.Publisher.Publish(ctx, key, payload); err != nil {
		logger.WithComponent("events").Warn("mirror publish failed", zap.String("key", key), zap.Error(err))
	}
}

// parseEventTime accepts RFC3339 plus the date-only fallbacks submitters
// actually send.
func parseEventTime(raw string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		layouts := []string{"2006-01-02", "2006-01-02 15:04", "2006-01-02 15:04:05"}
		for _, layout := range layouts {
			if t, e := time.Parse(layout, raw); e == nil {
				return t, nil
			}
		}
		return time.Time{}, err
	}
	return parsed, nil
}

// ---------------- CREATE ----------------
func CreateEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// --- Authenticated submitter ---
		sess, ok := middleware.SessionFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		creatorID, err := primitive.ObjectIDFromHex(sess.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		// --- Bind form fields ---
		var input struct {
			Name          string `form:"name" binding:"required"`
			Description   string `form:"description"`
			Address       string `form:"address"`
			City          string `form:"city"`
			Category      string `form:"category" binding:"required"`
			AgeGroup      string `form:"age_group" binding:"required"`
			EventDateTime string `form:"event_date_time" binding:"required"`
			Email         string `form:"email"`
			Website       string `form:"website"`
		}

		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !models.ValidCategory(input.Category) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
			return
		}
		if !models.ValidAgeGroup(input.AgeGroup) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown age group"})
			return
		}

		when, err := parseEventTime(input.EventDateTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event_date_time, use RFC3339 or YYYY-MM-DD"})
			return
		}

		// --- Handle image upload ---
		var imageURL string
		form, err := c.MultipartForm()
		if err != nil && err != http.ErrNotMultipart {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
			return
		}
		if form != nil {
			if files := form.File["image"]; len(files) > 0 {
				file, err := files[0].Open()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file"})
					return
				}
				url, err := utils.UploadEventImage(file, files[0])
				file.Close()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed", "details": err.Error()})
					return
				}
				imageURL = url
			}
		}

		// --- Save event: admin submissions go live immediately ---
		now := time.Now()
		event := models.Event{
			ID:            primitive.NewObjectID(),
			CreatedBy:     creatorID,
			Name:          input.Name,
			Description:   input.Description,
			Address:       input.Address,
			City:          input.City,
			Category:      input.Category,
			AgeGroup:      input.AgeGroup,
			EventDateTime: when,
			ImageURL:      imageURL,
			Email:         input.Email,
			Website:       input.Website,
			IsApproved:    sess.IsAdmin,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		col := cfg.Collection("events")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := col.InsertOne(ctx, event); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create event"})
			return
		}

		publishEvent(cfg, rabbitmq.KeyEventCreated, event)
		c.JSON(http.StatusCreated, event)
	}
}

// ---------------- LIST ----------------
func ListEvents(cfg *config.Config) gin.HandlerFunc {
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

		if len(events) == 0 {
			c.JSON(http.StatusOK, []models.Event{})
			return
		}

		// --- Pick the most recently updated event ---
		latest := events[0]
		for _, ev := range events {
			if ev.UpdatedAt.After(latest.UpdatedAt) {
				latest = ev
			}
		}

		etag := utils.GenerateETag(latest.ID, latest.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)
		c.Header("Last-Modified", latest.UpdatedAt.UTC().Format(http.TimeFormat))

		c.JSON(http.StatusOK, events)
	}
}

// ---------------- GET ----------------
func GetEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _ := middleware.SessionFrom(c)

		eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		// Unapproved events do not exist for non-admin viewers.
		filter := bson.M{"_id": eventID}
		if !sess.IsAdmin {
			filter["is_approved"] = true
		}

		var event models.Event
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := cfg.Collection("events").FindOne(ctx, filter).Decode(&event); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": apperrors.ErrEventNotFound.Error()})
			return
		}

		etag := utils.GenerateETag(event.ID, event.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)

		c.JSON(http.StatusOK, event)
	}
}

// ---------------- UPDATE ----------------
// The event write and the refresh of every denormalized SavedEvent copy
// commit in one transaction: readers never observe a half-applied edit.
func UpdateEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.SessionFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		objID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		col := cfg.Collection("events")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var existing models.Event
		if err := col.FindOne(ctx, bson.M{"_id": objID}).Decode(&existing); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}

		if !sess.IsAdmin && existing.CreatedBy.Hex() != sess.UserID {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		var input eventUpdateInput
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// The event $set plus the display subset that propagates into
		// every saved copy.
		update, copyUpdate, err := buildEventUpdate(input, time.Now())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// --- Handle replacement image ---
		form, _ := c.MultipartForm()
		if form != nil {
			if files := form.File["image"]; len(files) > 0 {
				file, err := files[0].Open()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open image"})
					return
				}
				url, err := utils.UploadEventImage(file, files[0])
				file.Close()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed", "details": err.Error()})
					return
				}
				update["image_url"] = url
				copyUpdate["event.image_url"] = url
			}
		}

		if len(update) == 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		savedCol := cfg.Collection("saved_events")
		mongoSession, err := cfg.MongoClient.StartSession()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update event"})
			return
		}
		defer mongoSession.EndSession(ctx)

		_, err = mongoSession.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
			if _, err := col.UpdateOne(sc, bson.M{"_id": objID}, bson.M{"$set": update}); err != nil {
				return nil, err
			}
			if len(copyUpdate) > 0 {
				if _, err := savedCol.UpdateMany(sc, bson.M{"event_id": objID}, bson.M{"$set": copyUpdate}); err != nil {
					return nil, err
				}
			}
			return nil, nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update event"})
			return
		}

		var updated models.Event
		if err := col.FindOne(ctx, bson.M{"_id": objID}).Decode(&updated); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve updated event"})
			return
		}

		publishEvent(cfg, rabbitmq.KeyEventUpdated, updated)
		c.JSON(http.StatusOK, gin.H{
			"message": "event updated successfully",
			"event":   updated,
		})
	}
}

// ---------------- DELETE ----------------
// Saved copies of a deleted event are removed in the same transaction;
// a saved list never points at an event that no longer resolves.
func DeleteEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.SessionFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		col := cfg.Collection("events")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var existing models.Event
		if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&existing); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}

		if !sess.IsAdmin && existing.CreatedBy.Hex() != sess.UserID {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		savedCol := cfg.Collection("saved_events")
		mongoSession, err := cfg.MongoClient.StartSession()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete event"})
			return
		}
		defer mongoSession.EndSession(ctx)

		_, err = mongoSession.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
			if _, err := col.DeleteOne(sc, bson.M{"_id": oid}); err != nil {
				return nil, err
			}
			if _, err := savedCol.DeleteMany(sc, bson.M{"event_id": oid}); err != nil {
				return nil, err
			}
			return nil, nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete event"})
			return
		}

		publishEvent(cfg, rabbitmq.KeyEventDeleted, gin.H{"id": oid.Hex()})

		if existing.ImageURL != "" {
			utils.DeleteImage(existing.ImageURL)
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "event deleted successfully",
			"id":      oid.Hex(),
		})
	}
}
