package server

import (
	"context"
	"fmt"
	"io"

	"github.com/gorilla/sessions"
	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"chatterd/internal/auth"
	"chatterd/internal/config"
	"chatterd/internal/domain"
	"chatterd/internal/handlers"
	"chatterd/internal/middleware"
	"chatterd/internal/pubsub"
	"chatterd/internal/realtime"
	"chatterd/internal/session"
	"chatterd/internal/store/sqlitestore"
	"chatterd/internal/store/surrealstore"
)

// staticDir holds the login and chat pages plus their assets.
const staticDir = "web/static"

// Server holds the dependencies for the HTTP server.
type Server struct {
	E        *echo.Echo
	Cfg      config.Provider
	Sessions *session.Registry

	users       domain.UserStore
	messages    domain.MessageStore
	storeCloser io.Closer

	bus        *pubsub.WatermillBridge
	bridge     *realtime.Bridge
	subscriber *realtime.Subscriber

	authHandler *handlers.AuthHandler
	chatHandler *handlers.ChatHandler

	cancel context.CancelFunc
}

// New creates a new Server instance wired to the store selected by the
// configuration.
func New(cfg config.Provider) (*Server, error) {
	users, messages, closer, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	// The session registry is owned here and handed to everything that
	// needs it; its lifetime is the server's.
	sessionRegistry := session.NewRegistry()
	authService := auth.NewService(users, sessionRegistry, cfg.GetBcryptCost(), cfg.GetStoreTimeout())

	bus := pubsub.NewWatermillBridge()
	bridge := realtime.NewBridge(bus)
	subscriber := realtime.NewSubscriber(bus, bridge, messages, cfg.GetStoreTimeout())

	ctx, cancel := context.WithCancel(context.Background())
	go bridge.Run(ctx)
	if err := subscriber.Start(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start chat subscriber: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.Logger)

	cookieStore := sessions.NewCookieStore([]byte(cfg.GetSessionSecret()))
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
	}
	e.Use(echosession.Middleware(cookieStore))

	s := &Server{
		E:           e,
		Cfg:         cfg,
		Sessions:    sessionRegistry,
		users:       users,
		messages:    messages,
		storeCloser: closer,
		bus:         bus,
		bridge:      bridge,
		subscriber:  subscriber,
		authHandler: handlers.NewAuthHandler(authService),
		chatHandler: handlers.NewChatHandler(messages, staticDir),
		cancel:      cancel,
	}
	return s, nil
}

// openStore builds the storage layer for the configured driver. Both
// drivers satisfy the same two capability interfaces, so nothing above
// this point knows which engine is underneath.
func openStore(cfg config.Provider) (domain.UserStore, domain.MessageStore, io.Closer, error) {
	switch cfg.GetStorageDriver() {
	case "surreal":
		st, err := surrealstore.Open(context.Background(), cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		return st, st, st, nil
	case "sqlite":
		st, err := sqlitestore.Open(cfg.GetSQLitePath())
		if err != nil {
			return nil, nil, nil, err
		}
		return st, st, st, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown storage driver %q", cfg.GetStorageDriver())
	}
}

// UserStore is a getter for the server's user store, useful for testing.
func (s *Server) UserStore() domain.UserStore {
	return s.users
}

// MessageStore is a getter for the server's message store, useful for testing.
func (s *Server) MessageStore() domain.MessageStore {
	return s.messages
}
