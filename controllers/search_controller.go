package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/townbeat/townbeat-go/apperrors"
	config "github.com/townbeat/townbeat-go/config"
	"github.com/townbeat/townbeat-go/middleware"
	models "github.com/townbeat/townbeat-go/models"
)

// SearchEvents is the switch between the hosted index and the
// structured query path. An empty term skips search entirely and serves
// the composed filter query instead.
func SearchEvents(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Query("q")
		mode := c.DefaultQuery("mode", "general")

		if q == "" {
			ListEvents(cfg)(c)
			return
		}

		// The index mirrors unapproved events too; non-admins only see
		// approved hits.
		sess, _ := middleware.SessionFrom(c)
		approvedOnly := !sess.IsAdmin

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var (
			summaries []models.EventSummary
			err       error
		)
		if mode == "date" {
			day, perr := time.Parse("2006-01-02", q)
			if perr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, use YYYY-MM-DD"})
				return
			}
			summaries, err = cfg.Search.SearchDay(ctx, day, approvedOnly)
		} else {
			summaries, err = cfg.Search.SearchText(ctx, q, approvedOnly)
		}
		if err != nil {
			if errors.Is(err, apperrors.ErrBadTimestamp) {
				c.JSON(http.StatusBadGateway, gin.H{"error": "search index returned a malformed record"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
			return
		}

		if summaries == nil {
			summaries = []models.EventSummary{}
		}
		c.JSON(http.StatusOK, summaries)
	}
}
