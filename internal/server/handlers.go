package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/graphjudge/internal/comparison"
	"github.com/mohammad-safakhou/graphjudge/internal/cypher"
	"github.com/mohammad-safakhou/graphjudge/internal/rag"
	"github.com/mohammad-safakhou/graphjudge/internal/subgraph"
)

// Engine is the comparison surface the handlers call. The orchestrator
// implements it; tests substitute fakes.
type Engine interface {
	Compare(ctx context.Context, question string, useVector bool) (comparison.Record, error)
	CompareBatch(ctx context.Context, questions []string, useVector bool) ([]comparison.Record, error)
	RetrieveAndAnswer(ctx context.Context, question string, useVector bool) (rag.Response, error)
	TranslateAndExecute(ctx context.Context, question string) cypher.Result
	Overview(ctx context.Context, limit int) (subgraph.Snapshot, error)
	Schema() string
	CorpusSize(ctx context.Context) (int64, error)
}

type questionRequest struct {
	Question  string `json:"question"`
	UseVector bool   `json:"use_vector"`
}

type batchRequest struct {
	Questions []string `json:"questions"`
	UseVector bool     `json:"use_vector"`
}

// sessionID resolves the caller's session, minting one when the header
// is absent. The resolved ID is echoed back on the response.
func (s *Server) sessionID(c echo.Context) string {
	id := c.Request().Header.Get("X-Session-ID")
	if id == "" {
		id = uuid.NewString()
	}
	c.Response().Header().Set("X-Session-ID", id)
	return id
}

func (s *Server) handleAnswer(c echo.Context) error {
	var req questionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}

	resp, err := s.engine.RetrieveAndAnswer(c.Request().Context(), req.Question, req.UseVector)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCypher(c echo.Context) error {
	var req questionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}

	result := s.engine.TranslateAndExecute(c.Request().Context(), req.Question)
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleCompare(c echo.Context) error {
	var req questionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}

	sessionID := s.sessionID(c)
	record, err := s.engine.Compare(c.Request().Context(), req.Question, req.UseVector)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	if err := s.store.Append(c.Request().Context(), sessionID, record); err != nil {
		s.logger.Printf("failed to store record %s: %v", record.ID, err)
	}
	return c.JSON(http.StatusOK, record)
}

func (s *Server) handleCompareBatch(c echo.Context) error {
	var req batchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Questions) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "questions are required")
	}

	sessionID := s.sessionID(c)
	records, err := s.engine.CompareBatch(c.Request().Context(), req.Questions, req.UseVector)
	for _, record := range records {
		if storeErr := s.store.Append(c.Request().Context(), sessionID, record); storeErr != nil {
			s.logger.Printf("failed to store record %s: %v", record.ID, storeErr)
		}
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"records": records,
		"stats":   comparison.Aggregate(records),
	})
}

func (s *Server) handleRecords(c echo.Context) error {
	sessionID := s.sessionID(c)
	records, err := s.store.Records(c.Request().Context(), sessionID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, records)
}

func (s *Server) handleClearRecords(c echo.Context) error {
	sessionID := s.sessionID(c)
	if err := s.store.Clear(c.Request().Context(), sessionID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleStats(c echo.Context) error {
	sessionID := s.sessionID(c)
	records, err := s.store.Records(c.Request().Context(), sessionID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, comparison.Aggregate(records))
}

func (s *Server) handleSchema(c echo.Context) error {
	size, err := s.engine.CorpusSize(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"schema":      s.engine.Schema(),
		"corpus_size": size,
	})
}

func (s *Server) handleGraph(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}

	snapshot, err := s.engine.Overview(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, snapshot)
}
