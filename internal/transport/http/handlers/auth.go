package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bookwise/booking-platform/internal/core/domain"
	"github.com/bookwise/booking-platform/internal/core/port"
	"github.com/bookwise/booking-platform/internal/transport/http/middleware"
	"github.com/bookwise/booking-platform/internal/usecase"
)

// AuthHandler exposes registration, login, and logout endpoints.
type AuthHandler struct {
	auth     *usecase.AuthService
	verifier port.TokenVerifier
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService, verifier port.TokenVerifier) *AuthHandler {
	return &AuthHandler{auth: auth, verifier: verifier}
}

// RegisterRoutes binds authentication routes, applying optional middleware
// ahead of the login handler.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, loginMiddlewares ...gin.HandlerFunc) {
	r.POST("/register", h.register)

	if len(loginMiddlewares) > 0 {
		chain := append([]gin.HandlerFunc{}, loginMiddlewares...)
		chain = append(chain, h.login)
		r.POST("/login", chain...)
	} else {
		r.POST("/login", h.login)
	}

	r.POST("/verify", h.verify)
	r.POST("/logout", middleware.RequireAuth(h.verifier), h.logout)
}

func (h *AuthHandler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	profile, err := h.auth.Register(c.Request.Context(), req.FullName, req.Phone, req.Email, req.Password, req.Role)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already registered"},
			{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
		}, http.StatusBadRequest, "registration failed")
		return
	}

	c.JSON(http.StatusCreated, profile)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid email or password"},
		}, http.StatusInternalServerError, "login failed")
		return
	}

	// The session is committed even when the broker fan-out failed.
	c.JSON(http.StatusOK, LoginResponse{
		Token:          result.Token,
		User:           result.User,
		EventDelivered: result.FanOutErr == nil,
	})
}

func (h *AuthHandler) verify(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "missing access token"))
		return
	}

	profile, err := h.auth.Verify(c.Request.Context(), token)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: domain.ErrUnauthenticated, Status: http.StatusUnauthorized, Message: "invalid or expired access token"},
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusUnauthorized, "invalid or expired access token")
		return
	}

	c.JSON(http.StatusOK, VerifyTokenResponse{Valid: true, User: profile})
}

func (h *AuthHandler) logout(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "missing access token"))
		return
	}

	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid or expired access token"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "logged out"})
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
