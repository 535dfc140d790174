// Package api serves sampling and vocabulary inspection for a trained
// in-memory model over HTTP.
package api

import (
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/wordrnn/internal/generate"
	"github.com/samcharles93/wordrnn/internal/logger"
	"github.com/samcharles93/wordrnn/internal/model"
	"github.com/samcharles93/wordrnn/internal/vocab"
)

// Limits bounds and defaults sample requests.
type Limits struct {
	DefaultSamples int
	DefaultLength  int
	MaxSamples     int
	MaxLength      int
}

// DefaultLimits are used for zero fields of Config.Limits.
var DefaultLimits = Limits{
	DefaultSamples: 4,
	DefaultLength:  300,
	MaxSamples:     32,
	MaxLength:      2000,
}

type Config struct {
	Model      model.Recurrent
	Vocabulary *vocab.Vocabulary
	Rand       *rand.Rand
	Joiner     string
	Limits     Limits
	Store      *SampleStore
	Log        logger.Logger
}

type Server struct {
	// mu guards the model state and rng shared by every request.
	mu     sync.Mutex
	model  model.Recurrent
	vocab  *vocab.Vocabulary
	rng    *rand.Rand
	joiner string
	limits Limits
	store  *SampleStore
	log    logger.Logger
	clock  func() time.Time
}

func NewServer(cfg Config) *Server {
	limits := cfg.Limits
	if limits.DefaultSamples <= 0 {
		limits.DefaultSamples = DefaultLimits.DefaultSamples
	}
	if limits.DefaultLength <= 0 {
		limits.DefaultLength = DefaultLimits.DefaultLength
	}
	if limits.MaxSamples <= 0 {
		limits.MaxSamples = DefaultLimits.MaxSamples
	}
	if limits.MaxLength <= 0 {
		limits.MaxLength = DefaultLimits.MaxLength
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Store == nil {
		cfg.Store = NewSampleStore(0)
	}
	if cfg.Log == nil {
		cfg.Log = logger.Discard()
	}
	return &Server{
		model:  cfg.Model,
		vocab:  cfg.Vocabulary,
		rng:    cfg.Rand,
		joiner: cfg.Joiner,
		limits: limits,
		store:  cfg.Store,
		log:    cfg.Log,
		clock:  time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)

	e.POST("/v1/samples", s.handleCreateSamples)
	e.GET("/v1/samples/:id", s.handleGetSamples)
	e.DELETE("/v1/samples/:id", s.handleDeleteSamples)

	e.GET("/v1/vocabulary", s.handleVocabulary)
	e.GET("/v1/vocabulary/:token", s.handleToken)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:     "ok",
		Vocabulary: s.vocab.Size(),
		Parameters: s.model.NumParameters(),
	})
}

func (s *Server) handleCreateSamples(c *echo.Context) error {
	req, err := decodeJSON[SamplesRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	opts, err := s.options(req)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	s.mu.Lock()
	rng := s.rng
	if req.Seed != nil {
		rng = rand.New(rand.NewSource(*req.Seed))
	}
	gen := generate.New(s.model, s.vocab, rng)
	gen.Joiner = s.joiner
	samples, err := gen.Generate(c.Request().Context(), opts)
	s.mu.Unlock()
	if err != nil {
		s.log.Warn("sampling failed", "error", err)
		return writeFailure(c, err)
	}

	resp := SamplesResponse{
		ID:        newSamplesID(),
		Object:    "samples",
		CreatedAt: s.clock().Unix(),
		Length:    opts.Steps,
		Samples:   make([]string, len(samples)),
	}
	for i, smp := range samples {
		resp.Seed = smp.Seed
		resp.Samples[i] = smp.Text
	}
	s.store.Save(resp)
	s.log.Debug("generated samples", "id", resp.ID, "samples", len(samples), "length", opts.Steps)
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) options(req SamplesRequest) (generate.Options, error) {
	opts := generate.Options{
		Samples: s.limits.DefaultSamples,
		Steps:   s.limits.DefaultLength,
		Prime:   req.Prime,
	}
	if req.Samples != nil {
		if *req.Samples <= 0 || *req.Samples > s.limits.MaxSamples {
			return opts, newInvalidRequest(fmt.Sprintf("samples must be in [1, %d]", s.limits.MaxSamples))
		}
		opts.Samples = *req.Samples
	}
	if req.Length != nil {
		if *req.Length < 0 || *req.Length > s.limits.MaxLength {
			return opts, newInvalidRequest(fmt.Sprintf("length must be in [0, %d]", s.limits.MaxLength))
		}
		opts.Steps = *req.Length
	}
	if req.Temperature != nil {
		if *req.Temperature <= 0 {
			return opts, newInvalidRequest("temperature must be > 0")
		}
		opts.Temperature = *req.Temperature
	}
	if req.Prime != "" && !s.vocab.Contains(req.Prime) {
		return opts, newInvalidRequest(fmt.Sprintf("prime %q is not in the vocabulary", req.Prime))
	}
	return opts, nil
}

func (s *Server) handleGetSamples(c *echo.Context) error {
	resp, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "samples not found")
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDeleteSamples(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "samples not found")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"id":      id,
		"object":  "samples.deleted",
		"deleted": true,
	})
}

func (s *Server) handleVocabulary(c *echo.Context) error {
	return c.JSON(http.StatusOK, vocab.Snapshot{Size: s.vocab.Size(), Tokens: s.vocab.Tokens()})
}

func (s *Server) handleToken(c *echo.Context) error {
	token := c.Param("token")
	if unescaped, err := url.PathUnescape(token); err == nil {
		token = unescaped
	}
	idx, err := s.vocab.Index(token)
	if err != nil {
		return writeFailure(c, err)
	}
	return c.JSON(http.StatusOK, TokenResponse{Token: token, Index: idx})
}
