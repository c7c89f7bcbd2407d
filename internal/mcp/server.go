// ABOUTME: MCP server setup for the caff caffeine ledger and score engine.
// ABOUTME: Wraps MCP server with storage, evaluator, and telemetry access.
package mcp

import (
	"context"
	"time"

	"github.com/harperreed/caff/internal/engine"
	"github.com/harperreed/caff/internal/logger"
	"github.com/harperreed/caff/internal/service"
	"github.com/harperreed/caff/internal/storage"
	"github.com/harperreed/caff/internal/telemetry"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Options configures a Server. Zero values fall back to defaults.
type Options struct {
	UserID       string
	Evaluator    *service.Evaluator
	Recorder     *telemetry.Recorder
	Logger       *logger.Logger
	CurveHorizon time.Duration
	CurveStep    time.Duration
}

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer *mcp.Server
	repo      storage.Repository
	eval      *service.Evaluator
	rec       *telemetry.Recorder
	log       *logger.Logger
	userID    string
	horizon   time.Duration
	step      time.Duration
	now       func() time.Time
}

// NewServer creates a new MCP server with the given storage.
func NewServer(repo storage.Repository, opts Options) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "caff",
			Version: "1.0.0",
		},
		nil,
	)

	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	eval := opts.Evaluator
	if eval == nil {
		eval = service.NewEvaluator(repo, engine.New(engine.DefaultConfig(), log), opts.Recorder, log)
	}
	userID := opts.UserID
	if userID == "" {
		userID = "default"
	}
	horizon := opts.CurveHorizon
	if horizon <= 0 {
		horizon = engine.DefaultCurveHorizon
	}
	step := opts.CurveStep
	if step <= 0 {
		step = engine.DefaultCurveStep
	}

	s := &Server{
		mcpServer: mcpServer,
		repo:      repo,
		eval:      eval,
		rec:       opts.Recorder,
		log:       log.With("component", "mcp"),
		userID:    userID,
		horizon:   horizon,
		step:      step,
		now:       time.Now,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info("serving MCP over stdio", "user_id", s.userID)
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
