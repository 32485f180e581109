package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mohammad-safakhou/graphjudge/config"
	"github.com/mohammad-safakhou/graphjudge/internal/session"
	"github.com/mohammad-safakhou/graphjudge/internal/telemetry"
)

// Server exposes the comparison engine over HTTP.
type Server struct {
	engine  Engine
	store   session.Store
	tel     *telemetry.Telemetry
	cfg     *config.Config
	logger  *log.Logger
	echoSrv *echo.Echo
}

// New assembles the HTTP server around an engine and a session store.
func New(engine Engine, store session.Store, tel *telemetry.Telemetry, cfg *config.Config) *Server {
	s := &Server{
		engine: engine,
		store:  store,
		tel:    tel,
		cfg:    cfg,
		logger: log.New(log.Writer(), "[HTTP] ", log.LstdFlags),
	}
	s.echoSrv = s.buildEcho()
	return s
}

func (s *Server) buildEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		s.logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Session-ID"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/metrics", echo.WrapHandler(s.tel.Handler()))

	api := e.Group("/api")
	api.POST("/answer", s.handleAnswer)
	api.POST("/cypher", s.handleCypher)
	api.POST("/compare", s.handleCompare)
	api.POST("/compare/batch", s.handleCompareBatch)
	api.GET("/records", s.handleRecords)
	api.DELETE("/records", s.handleClearRecords)
	api.GET("/stats", s.handleStats)
	api.GET("/schema", s.handleSchema)
	api.GET("/graph", s.handleGraph)

	return e
}

// Echo returns the underlying router, used by tests.
func (s *Server) Echo() *echo.Echo { return s.echoSrv }

// Run blocks serving HTTP on the configured address.
func (s *Server) Run() error {
	addr := s.cfg.Server.Addr
	if addr == "" {
		addr = ":10001"
	}
	s.logger.Printf("listening on %s", addr)
	return s.echoSrv.Start(addr)
}
