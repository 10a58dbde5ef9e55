package handlers

import (
	"errors"
	"net/http"

	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"chatterd/internal/auth"
	"chatterd/internal/domain"
	"chatterd/internal/middleware"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	svc *auth.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// SignupPost handles POST /signup.
func (h *AuthHandler) SignupPost(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: "Username and password are required"})
	}

	user, err := h.svc.Signup(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return c.JSON(http.StatusConflict, MessageResponse{Message: "Username already taken"})
		}
		middleware.FromContext(c.Request().Context()).Error("Error creating user", "error", err)
		return c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Error creating user"})
	}

	return c.JSON(http.StatusCreated, AuthResponse{Message: "User created successfully", UserID: user.ID})
}

// LoginPost handles POST /login. Both failure causes return an identical
// body so callers cannot enumerate usernames.
func (h *AuthHandler) LoginPost(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: "Username and password are required"})
	}

	sessionID, user, err := h.svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, MessageResponse{Message: "Invalid credentials"})
		}
		middleware.FromContext(c.Request().Context()).Error("Error logging in", "error", err)
		return c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Error logging in"})
	}

	sess, err := echosession.Get(middleware.SessionName, c)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Failed to get cookie session", "error", err)
		return c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Error logging in"})
	}
	sess.Values[middleware.SessionIDKey] = sessionID
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		middleware.FromContext(c.Request().Context()).Error("Failed to save cookie session", "error", err)
		return c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Error logging in"})
	}

	return c.JSON(http.StatusOK, AuthResponse{Message: "Login successful", UserID: user.ID})
}

// LogoutGet handles GET /logout. The server-side session is destroyed, the
// cookie is cleared, and the client is sent back to the login page.
func (h *AuthHandler) LogoutGet(c echo.Context) error {
	sess, err := echosession.Get(middleware.SessionName, c)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Error destroying session", "error", err)
		return c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Logout failed"})
	}

	if sessionID, ok := sess.Values[middleware.SessionIDKey].(string); ok {
		h.svc.Logout(sessionID)
	}
	delete(sess.Values, middleware.SessionIDKey)
	sess.Options.MaxAge = -1
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		middleware.FromContext(c.Request().Context()).Error("Error destroying session", "error", err)
		return c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Logout failed"})
	}

	return c.Redirect(http.StatusSeeOther, "/login.html")
}
