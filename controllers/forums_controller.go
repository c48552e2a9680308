package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	config "github.com/townbeat/townbeat-go/config"
	"github.com/townbeat/townbeat-go/middleware"
	models "github.com/townbeat/townbeat-go/models"
	utils "github.com/townbeat/townbeat-go/utils"
)

// Forums, topics and posts only ever get created and listed; there is
// no edit or delete lifecycle.

// ---------------- FORUMS ----------------
func CreateForum(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authorID, ok := sessionObjectID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var input struct {
			Title       string `json:"title" binding:"required"`
			Description string `json:"description"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		now := time.Now()
		forum := models.Forum{
			ID:          primitive.NewObjectID(),
			Title:       input.Title,
			Description: input.Description,
			AuthorID:    authorID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := cfg.Collection("forums").InsertOne(ctx, forum); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create forum"})
			return
		}

		c.JSON(http.StatusCreated, forum)
	}
}

func ListForums(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
		cursor, err := cfg.Collection("forums").Find(ctx, bson.M{}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch forums"})
			return
		}

		var forums []models.Forum
		if err := cursor.All(ctx, &forums); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode forums"})
			return
		}
		if forums == nil {
			forums = []models.Forum{}
		}

		c.JSON(http.StatusOK, forums)
	}
}

// ---------------- TOPICS ----------------
func CreateTopic(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authorID, ok := sessionObjectID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		forumID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid forum id"})
			return
		}

		var input struct {
			Title       string `json:"title" binding:"required"`
			Description string `json:"description"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// Parent forum must exist.
		if err := cfg.Collection("forums").FindOne(ctx, bson.M{"_id": forumID}).Err(); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "forum not found"})
			return
		}

		now := time.Now()
		topic := models.Topic{
			ID:          primitive.NewObjectID(),
			ForumID:     forumID,
			Title:       input.Title,
			Description: input.Description,
			AuthorID:    authorID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if _, err := cfg.Collection("topics").InsertOne(ctx, topic); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create topic"})
			return
		}

		c.JSON(http.StatusCreated, topic)
	}
}

func ListTopics(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		forumID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid forum id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
		cursor, err := cfg.Collection("topics").Find(ctx, bson.M{"forum_id": forumID}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch topics"})
			return
		}

		var topics []models.Topic
		if err := cursor.All(ctx, &topics); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode topics"})
			return
		}
		if topics == nil {
			topics = []models.Topic{}
		}

		c.JSON(http.StatusOK, topics)
	}
}

// ---------------- POSTS ----------------
func CreatePost(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authorID, ok := sessionObjectID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		topicID, err := primitive.ObjectIDFromHex(c.Param("topicId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid topic id"})
			return
		}

		var input struct {
			Content string `form:"content" binding:"required"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := cfg.Collection("topics").FindOne(ctx, bson.M{"_id": topicID}).Err(); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
			return
		}

		// --- Optional post image ---
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
				url, err := utils.UploadForumImage(file, files[0])
				file.Close()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed", "details": err.Error()})
					return
				}
				imageURL = url
			}
		}

		now := time.Now()
		post := models.Post{
			ID:        primitive.NewObjectID(),
			TopicID:   topicID,
			Content:   input.Content,
			ImageURL:  imageURL,
			AuthorID:  authorID,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if _, err := cfg.Collection("posts").InsertOne(ctx, post); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create post"})
			return
		}

		c.JSON(http.StatusCreated, post)
	}
}

func ListPosts(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		topicID, err := primitive.ObjectIDFromHex(c.Param("topicId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid topic id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
		cursor, err := cfg.Collection("posts").Find(ctx, bson.M{"topic_id": topicID}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch posts"})
			return
		}

		var posts []models.Post
		if err := cursor.All(ctx, &posts); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode posts"})
			return
		}
		if posts == nil {
			posts = []models.Post{}
		}

		c.JSON(http.StatusOK, posts)
	}
}

// sessionObjectID resolves the caller's user id from the session.
func sessionObjectID(c *gin.Context) (primitive.ObjectID, bool) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		return primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(sess.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}
