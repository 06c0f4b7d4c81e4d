// Package httpapi exposes the daemon's REST surface. Handlers translate
// HTTP requests into chat, presence, and store calls; all domain rules
// live below this package.
package httpapi

import (
	"context"
	"fmt"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/pcordeiro/parley/internal/auth"
	"github.com/pcordeiro/parley/internal/chat"
	"github.com/pcordeiro/parley/internal/presence"
	"github.com/pcordeiro/parley/internal/status"
	"github.com/pcordeiro/parley/internal/store"
	"github.com/pcordeiro/parley/internal/upload"
	"go.uber.org/zap"
)

// API holds the handler dependencies.
type API struct {
	db      *store.DB
	svc     *chat.Service
	tracker *presence.Tracker
	auth    *auth.Manager
	uploads *upload.Store
	machine *status.Machine
	logger  *zap.Logger
}

// Server manages the HTTP server lifecycle for the daemon.
type Server struct {
	app      *fiber.App
	listener net.Listener
	addr     string
	logger   *zap.Logger
}

// NewServer creates the fiber app bound to addr and registers all routes.
func NewServer(
	addr string,
	db *store.DB,
	svc *chat.Service,
	tracker *presence.Tracker,
	authMgr *auth.Manager,
	uploads *upload.Store,
	machine *status.Machine,
	logger *zap.Logger,
) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	a := &API{
		db:      db,
		svc:     svc,
		tracker: tracker,
		auth:    authMgr,
		uploads: uploads,
		machine: machine,
		logger:  logger,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             32 << 20,
	})
	a.register(app)

	return &Server{
		app:      app,
		listener: listener,
		addr:     listener.Addr().String(),
		logger:   logger,
	}, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	return s.addr
}

// register wires every route onto the app.
func (a *API) register(app *fiber.App) {
	app.Get("/healthz", a.handleHealth)
	app.Static("/uploads", a.uploads.Dir())

	authGroup := app.Group("/api/auth")
	authGroup.Post("/register", a.handleRegister)
	authGroup.Post("/login", a.handleLogin)
	authGroup.Post("/logout", a.handleLogout)
	authGroup.Get("/me", a.requireAuth, a.handleMe)
	authGroup.Post("/onboarding", a.requireAuth, a.handleOnboarding)

	users := app.Group("/api/users", a.requireAuth)
	users.Get("/search", a.handleSearchUsers)
	users.Patch("/me", a.handleEditProfile)
	users.Get("/:id", a.handleGetUser)

	convs := app.Group("/api/conversations", a.requireAuth)
	convs.Get("/", a.handleListConversations)
	convs.Post("/dm", a.handleCreateDM)
	convs.Post("/group", a.handleCreateGroup)
	convs.Get("/:id", a.handleGetConversation)
	convs.Delete("/:id", a.handleHideConversation)
	convs.Get("/:id/theme", a.handleGetTheme)
	convs.Patch("/:id/theme", a.handleUpdateTheme)
	convs.Get("/:id/attachments", a.handleListAttachments)

	msgs := app.Group("/api/messages", a.requireAuth)
	msgs.Patch("/presence", a.handleHeartbeat)
	msgs.Get("/:conversationId", a.handleListMessages)
	msgs.Post("/:conversationId", a.handleSendMessage)
	msgs.Delete("/:messageId", a.handleDeleteMessage)
	msgs.Post("/:messageId/hide", a.handleHideMessage)
	msgs.Post("/:messageId/react", a.handleReact)
	msgs.Get("/:conversationId/typing", a.handleGetTyping)
	msgs.Post("/:conversationId/typing", a.handleSetTyping)
}

// handleHealth GET /healthz
func (a *API) handleHealth(c *fiber.Ctx) error {
	state := a.machine.Current()
	code := fiber.StatusOK
	if state != status.Ready {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{"status": string(state)})
}

// Start begins serving requests. Blocks until stopped.
func (s *Server) Start() error {
	s.logger.Info("http server starting", zap.String("addr", s.addr))
	return s.app.Listener(s.listener)
}

// Stop performs a graceful shutdown bounded by ctx.
func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("http server stopping")
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		s.logger.Warn("shutdown incomplete", zap.Error(err))
	}
}
