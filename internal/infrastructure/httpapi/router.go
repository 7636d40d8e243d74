package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"BrainCandy/internal/domain"
	"BrainCandy/internal/ports"
	"BrainCandy/internal/reputation"
)

// Status serves read-only views of the curation state.
type Status struct {
	repo     ports.StateRepository
	clock    ports.Clock
	location *time.Location
}

// NewStatus wires the status handlers.
func NewStatus(repo ports.StateRepository, clock ports.Clock, loc *time.Location) *Status {
	if loc == nil {
		loc = time.UTC
	}
	return &Status{repo: repo, clock: clock, location: loc}
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(status *Status) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/health", handleHealth)
	api := r.Group("/api")
	api.GET("/queue", status.handleQueue)
	api.GET("/pending", status.handlePending)
	api.GET("/reputation", status.handleReputation)
	api.GET("/daily", status.handleDaily)
	api.GET("/discovery", status.handleDiscovery)
	return r
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Status) handleQueue(c *gin.Context) {
	queue, err := s.repo.LoadQueue(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	if queue == nil {
		queue = []domain.QueueEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"size": len(queue), "entries": queue})
}

func (s *Status) handlePending(c *gin.Context) {
	pending, err := s.repo.LoadPending(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"size": pending.Len(), "entries": pending})
}

func (s *Status) handleReputation(c *gin.Context) {
	log, err := s.repo.LoadFeedback(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stats":   reputation.Summarize(log),
		"sources": reputation.Compute(log),
	})
}

func (s *Status) handleDaily(c *gin.Context) {
	daily, err := s.repo.LoadDailySources(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	today := domain.Day(s.clock.Now().In(s.location))
	c.JSON(http.StatusOK, daily.For(today))
}

func (s *Status) handleDiscovery(c *gin.Context) {
	ledger, err := s.repo.LoadDiscovery(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	if ledger.Promoted == nil {
		ledger.Promoted = []domain.PromotedFeed{}
	}
	c.JSON(http.StatusOK, gin.H{
		"tracked":      len(ledger.Sources),
		"promoted":     ledger.Promoted,
		"last_updated": ledger.UpdatedAt,
	})
}

func respondWithError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
