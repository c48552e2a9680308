package routes

import (
	"github.com/gin-gonic/gin"

	config "github.com/townbeat/townbeat-go/config"
	controllers "github.com/townbeat/townbeat-go/controllers"
	middleware "github.com/townbeat/townbeat-go/middleware"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config) {
	// public
	r.POST("/auth/register", controllers.Register(cfg))
	r.POST("/auth/login", controllers.Login(cfg))
	r.POST("/auth/refresh", controllers.RefreshToken(cfg))

	auth := middleware.AuthMiddleware(cfg)
	optional := middleware.OptionalAuth(cfg)

	// Browsing is public; the visibility rule keys off the optional
	// session. Writing requires auth.
	events := r.Group("/events")
	events.Use(optional)
	{
		events.GET("", controllers.ListEvents(cfg))
		events.GET("/search", controllers.SearchEvents(cfg))
		events.GET("/live", controllers.LiveEvents(cfg))
		events.GET("/:id", controllers.GetEvent(cfg))
		events.GET("/:id/reviews", controllers.ListEventReviews(cfg))
	}

	eventsAuth := r.Group("/events")
	eventsAuth.Use(auth)
	{
		eventsAuth.POST("", controllers.CreateEvent(cfg))
		eventsAuth.PATCH("/:id", controllers.UpdateEvent(cfg))
		eventsAuth.DELETE("/:id", controllers.DeleteEvent(cfg))
		eventsAuth.POST("/:id/reviews", controllers.CreateReview(cfg))
	}

	saved := r.Group("/saved-events")
	saved.Use(auth)
	{
		saved.POST("/toggle", controllers.ToggleSavedEvent(cfg))
		saved.GET("", controllers.ListSavedEvents(cfg))
		saved.GET("/count", controllers.CountSavedEvents(cfg))
		saved.GET("/live", controllers.LiveSavedCount(cfg))
	}

	forums := r.Group("/forums")
	{
		forums.GET("", controllers.ListForums(cfg))
		forums.GET("/:id/topics", controllers.ListTopics(cfg))
		forums.GET("/:id/topics/:topicId/posts", controllers.ListPosts(cfg))
		forums.POST("", auth, controllers.CreateForum(cfg))
		forums.POST("/:id/topics", auth, controllers.CreateTopic(cfg))
		forums.POST("/:id/topics/:topicId/posts", auth, controllers.CreatePost(cfg))
	}

	users := r.Group("/users")
	users.Use(auth)
	{
		users.GET("", middleware.AdminOnly(), controllers.ListUsers(cfg))
		users.GET("/:id", controllers.GetUser(cfg))
		users.PATCH("/:id", controllers.UpdateUser(cfg))
		users.DELETE("/:id", middleware.AdminOnly(), controllers.DeleteUser(cfg))
	}

	admin := r.Group("/admin")
	admin.Use(auth, middleware.AdminOnly())
	{
		admin.GET("/events", controllers.ListModerationQueue(cfg))
		admin.POST("/events/:id/approve", controllers.ApproveEvent(cfg))
		admin.POST("/reindex", controllers.Reindex(cfg))
	}
}
