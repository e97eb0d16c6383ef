package reporting

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/stackpipe/internal/logger"
)

// Hour-of-day bounds for the by-hour report.
const (
	minHour = 0
	maxHour = 24
)

// Handler serves the reporting queries over HTTP.
type Handler struct {
	repo *Repository
	log  logger.Interface
}

// NewHandler creates a reporting handler.
func NewHandler(repo *Repository, log logger.Interface) *Handler {
	return &Handler{
		repo: repo,
		log:  log.WithComponent("reporting"),
	}
}

// NewRouter builds the gin engine with the reporting routes mounted.
func NewRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1/reports")
	{
		v1.GET("/tags/popular", h.popularTags)
		v1.GET("/tags/popular-this-week", h.popularTagsThisWeek)
		v1.GET("/tags/by-votes", h.tagsByVotes)
		v1.GET("/tags/by-answers", h.tagsByAnswers)
		v1.GET("/questions/by-hour", h.questionsByHour)
		v1.GET("/authors/top-askers", h.topAskers)
		v1.GET("/authors/top-answerers", h.topAnswerers)
	}

	return router
}

func (h *Handler) popularTags(c *gin.Context) {
	h.respondList(c, "tags", func(ctx context.Context) (any, error) {
		return h.repo.PopularTags(ctx)
	})
}

func (h *Handler) popularTagsThisWeek(c *gin.Context) {
	h.respondList(c, "tags", func(ctx context.Context) (any, error) {
		return h.repo.PopularTagsThisWeek(ctx)
	})
}

func (h *Handler) tagsByVotes(c *gin.Context) {
	h.respondList(c, "tags", func(ctx context.Context) (any, error) {
		return h.repo.TagsByVotes(ctx)
	})
}

func (h *Handler) tagsByAnswers(c *gin.Context) {
	h.respondList(c, "tags", func(ctx context.Context) (any, error) {
		return h.repo.TagsByAnswers(ctx)
	})
}

// questionsByHour reports question counts per hour of day, bounded by the
// optional "from" and "to" query parameters (defaults cover the whole day).
func (h *Handler) questionsByHour(c *gin.Context) {
	from, fromErr := hourParam(c, "from", minHour)
	to, toErr := hourParam(c, "to", maxHour)
	if fromErr != nil || toErr != nil || from >= to {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hour range"})
		return
	}

	h.respondList(c, "hours", func(ctx context.Context) (any, error) {
		return h.repo.QuestionsByHour(ctx, from, to)
	})
}

func (h *Handler) topAskers(c *gin.Context) {
	h.respondList(c, "authors", func(ctx context.Context) (any, error) {
		return h.repo.TopAskers(ctx)
	})
}

func (h *Handler) topAnswerers(c *gin.Context) {
	h.respondList(c, "authors", func(ctx context.Context) (any, error) {
		return h.repo.TopAnswerers(ctx)
	})
}

// respondList runs one repository query and writes the rows under key.
func (h *Handler) respondList(c *gin.Context, key string, query func(context.Context) (any, error)) {
	rows, err := query(c.Request.Context())
	if err != nil {
		h.log.Error("reporting query failed", "path", c.FullPath(), "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{key: rows})
}

// hourParam reads an hour-of-day query parameter with a default.
func hourParam(c *gin.Context, name string, defaultValue int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue, nil
	}

	hour, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if hour < minHour || hour > maxHour {
		return 0, errors.New("hour out of range")
	}
	return hour, nil
}
