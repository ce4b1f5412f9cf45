package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/lmeval/internal/dataset"
	"github.com/samcharles93/lmeval/internal/eval"
	"github.com/samcharles93/lmeval/internal/lm"
	"github.com/samcharles93/lmeval/internal/logger"
	"github.com/samcharles93/lmeval/internal/report"
)

type Server struct {
	evaluator *eval.Evaluator
	info      lm.Info
	store     *EvaluationStore
	log       logger.Logger
	clock     func() time.Time
}

func NewServer(evaluator *eval.Evaluator, info lm.Info, store *EvaluationStore, log logger.Logger) *Server {
	if store == nil {
		store = NewEvaluationStore(0)
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Server{
		evaluator: evaluator,
		info:      info,
		store:     store,
		log:       log,
		clock:     time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.GET("/v1/model", s.handleModel)
	e.POST("/v1/predictions", s.handlePredict)
	e.POST("/v1/evaluations", s.handleCreateEvaluation)
	e.GET("/v1/evaluations", s.handleListEvaluations)
	e.GET("/v1/evaluations/:id", s.handleGetEvaluation)
	e.DELETE("/v1/evaluations/:id", s.handleDeleteEvaluation)
}

type PredictRequest struct {
	Tokens []string `json:"tokens,omitempty"`
	// Code is an alternative to Tokens: whitespace separated tokens.
	Code string `json:"code,omitempty"`
}

type PredictResponse struct {
	Object        string              `json:"object"`
	ContextWindow int                 `json:"contextWindow"`
	Predictions   []report.Prediction `json:"predictions"`
}

type EvaluateRequest struct {
	TestSet string     `json:"testSet"`
	Methods [][]string `json:"methods,omitempty"`
	Lines   []string   `json:"lines,omitempty"`
}

type DeleteEvaluationResp struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleModel(c *echo.Context) error {
	return c.JSON(http.StatusOK, s.info)
}

func (s *Server) handlePredict(c *echo.Context) error {
	req, err := decodeJSON[PredictRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, fmt.Sprintf("invalid JSON body: %v", err))
	}
	tokens, err := req.tokens()
	if err != nil {
		return writeRequestError(c, err)
	}

	preds := s.evaluator.PredictSequence(tokens)
	return c.JSON(http.StatusOK, PredictResponse{
		Object:        "prediction.list",
		ContextWindow: s.evaluator.Order(),
		Predictions:   report.FromPredictions(preds),
	})
}

func (r PredictRequest) tokens() ([]string, error) {
	if len(r.Tokens) > 0 && strings.TrimSpace(r.Code) != "" {
		return nil, invalidRequest("tokens and code are mutually exclusive")
	}
	var tokens []string
	if len(r.Tokens) > 0 {
		for _, tok := range r.Tokens {
			tokens = append(tokens, strings.Fields(tok)...)
		}
	} else {
		tokens = strings.Fields(r.Code)
	}
	if len(tokens) == 0 {
		return nil, invalidRequest("tokens or code is required")
	}
	return tokens, nil
}

func (s *Server) handleCreateEvaluation(c *echo.Context) error {
	req, err := decodeJSON[EvaluateRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, fmt.Sprintf("invalid JSON body: %v", err))
	}
	ds, err := req.dataset()
	if err != nil {
		return writeRequestError(c, err)
	}

	res, err := s.evaluator.Evaluate(c.Request().Context(), ds.Name, ds.Methods)
	if err != nil {
		if !errors.Is(err, eval.ErrEmptyCorpus) {
			s.log.Error("evaluation failed", "test_set", ds.Name, "error", err)
		}
		return writeRequestError(c, err)
	}

	ev := s.store.Create(report.FromResult(res), s.clock())
	s.log.Info("stored evaluation", "id", ev.ID, "test_set", ds.Name, "methods", len(ds.Methods))
	return c.JSON(http.StatusOK, ev)
}

func (r EvaluateRequest) dataset() (*dataset.Dataset, error) {
	name := strings.TrimSpace(r.TestSet)
	if name == "" {
		name = "inline"
	}
	if len(r.Methods) > 0 && len(r.Lines) > 0 {
		return nil, invalidRequest("methods and lines are mutually exclusive")
	}
	if len(r.Lines) > 0 {
		ds, err := dataset.FromLines(name, r.Lines)
		if err != nil {
			return nil, invalidRequest("lines: no non-empty methods")
		}
		return ds, nil
	}

	// Same rule as line input: blank methods never reach the evaluator.
	var methods [][]string
	for _, m := range r.Methods {
		var tokens []string
		for _, tok := range m {
			tokens = append(tokens, strings.Fields(tok)...)
		}
		if len(tokens) > 0 {
			methods = append(methods, tokens)
		}
	}
	if len(methods) == 0 {
		return nil, invalidRequest("methods or lines is required")
	}
	return &dataset.Dataset{Name: name, Methods: methods}, nil
}

func (s *Server) handleListEvaluations(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"object": "list",
		"data":   s.store.List(),
	})
}

func (s *Server) handleGetEvaluation(c *echo.Context) error {
	ev, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "evaluation not found")
	}
	return c.JSON(http.StatusOK, ev)
}

func (s *Server) handleDeleteEvaluation(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "evaluation not found")
	}
	return c.JSON(http.StatusOK, DeleteEvaluationResp{
		ID:      id,
		Object:  "evaluation",
		Deleted: true,
	})
}
