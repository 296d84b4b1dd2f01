package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"godisso/app"
	"godisso/domain/core"
	"godisso/domain/profile"
	"godisso/internal"
	apperrors "godisso/internal/errors"
	"godisso/ports"
)

// Server exposes the assessment pipeline as a JSON API
type Server struct {
	router *gin.Engine
	svc    *app.AssessmentService
	repo   ports.AssessmentRepository // nil when persistence is disabled
	log    *internal.Logger
	port   string
}

// Config holds server configuration
type Config struct {
	Port    string
	GinMode string
}

// NewServer creates the API server and registers its routes
func NewServer(cfg Config, svc *app.AssessmentService, repo ports.AssessmentRepository, log *internal.Logger) *Server {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	if log == nil {
		log = internal.DefaultLogger
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	s := &Server{router: router, svc: svc, repo: repo, log: log, port: cfg.Port}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.router.Group("/api/v1")
	v1.POST("/assessments", s.handleAssess)
	v1.GET("/assessments/:id", s.handleGet)
	v1.GET("/assessments", s.handleList)
}

// Run starts the HTTP server (blocking)
func (s *Server) Run() error {
	return s.router.Run(":" + s.port)
}

type assessRequest struct {
	Reference profile.Set `json:"reference" binding:"required"`
	Test      profile.Set `json:"test" binding:"required"`
	Options   struct {
		Alpha         float64   `json:"alpha"`
		Tolerance     float64   `json:"tolerance"`
		MaxIterations int       `json:"max_iterations"`
		InitialGuess  []float64 `json:"initial_guess"`
		ApplyCapRule  bool      `json:"apply_cap_rule"`
	} `json:"options"`
}

func (s *Server) handleAssess(c *gin.Context) {
	var req assessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := s.svc.Assess(c.Request.Context(), &req.Reference, &req.Test, app.Options{
		Alpha:         req.Options.Alpha,
		Tolerance:     req.Options.Tolerance,
		MaxIterations: req.Options.MaxIterations,
		InitialGuess:  req.Options.InitialGuess,
		ApplyCapRule:  req.Options.ApplyCapRule,
	})
	if err != nil {
		switch {
		case core.IsNonConvergenceError(err):
			// usable best-effort record, surfaced with the warning
			c.JSON(http.StatusOK, gin.H{"record": rec, "warning": err.Error()})
		case core.IsInvalidInputError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case core.IsSingularMatrixError(err):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			s.log.Error("assessment failed [%s]: %v", apperrors.GetCode(err), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": rec})
}

func (s *Server) handleGet(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence is not configured"})
		return
	}
	id, err := core.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := s.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if core.IsNotFoundError(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		s.log.Error("assessment lookup failed [%s]: %v", apperrors.GetCode(err), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": rec})
}

func (s *Server) handleList(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence is not configured"})
		return
	}
	recs, err := s.repo.ListRecent(c.Request.Context(), 50)
	if err != nil {
		s.log.Error("assessment listing failed [%s]: %v", apperrors.GetCode(err), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": recs})
}
