package server

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"chatterd/internal/middleware"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	requireAuth := middleware.Auth(s.Sessions)

	// The chat page and its data require a valid session.
	s.E.GET("/", s.chatHandler.HomeGet, requireAuth)
	s.E.GET("/messages", s.chatHandler.MessagesGet, requireAuth)
	s.E.GET("/ws", s.bridge.Handler(), requireAuth)

	s.E.POST("/signup", s.authHandler.SignupPost)
	s.E.POST("/login", s.authHandler.LoginPost)
	s.E.GET("/logout", s.authHandler.LogoutGet)

	// Static collaborators: the login page and shared assets.
	s.E.File("/login.html", filepath.Join(staticDir, "login.html"))
	s.E.Static("/static", staticDir)

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
}
