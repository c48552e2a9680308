package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/townbeat/townbeat-go/apperrors"
	config "github.com/townbeat/townbeat-go/config"
	"github.com/townbeat/townbeat-go/middleware"
	models "github.com/townbeat/townbeat-go/models"
)

// ---------------- LIST ----------------
func ListUsers(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cursor, err := cfg.Collection("users").Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch users"})
			return
		}

		var users []models.UserInfo
		if err := cursor.All(ctx, &users); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode users"})
			return
		}
		if users == nil {
			users = []models.UserInfo{}
		}

		c.JSON(http.StatusOK, users)
	}
}

// ---------------- GET ----------------
func GetUser(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _ := middleware.SessionFrom(c)

		uid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}
		if !sess.IsAdmin && sess.UserID != uid.Hex() {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var user models.UserInfo
		if err := cfg.Collection("users").FindOne(ctx, bson.M{"_id": uid}).Decode(&user); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": apperrors.ErrUserNotFound.Error()})
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

// ---------------- UPDATE ----------------
// Only profile fields are writable; the admin flag is flipped out of
// band, never through this endpoint.
func UpdateUser(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _ := middleware.SessionFrom(c)

		uid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}
		if !sess.IsAdmin && sess.UserID != uid.Hex() {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		var input struct {
			DisplayName string `json:"display_name"`
			PhotoURL    string `json:"photo_url"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		update := bson.M{"updated_at": time.Now()}
		if input.DisplayName != "" {
			update["display_name"] = input.DisplayName
		}
		if input.PhotoURL != "" {
			update["photo_url"] = input.PhotoURL
		}
		if len(update) == 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		col := cfg.Collection("users")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := col.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$set": update})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update user"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "user updated", "id": uid.Hex()})
	}
}

// ---------------- DELETE ----------------
func DeleteUser(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}

		col := cfg.Collection("users")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := col.DeleteOne(ctx, bson.M{"_id": uid})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete user"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "user deleted", "id": uid.Hex()})
	}
}
