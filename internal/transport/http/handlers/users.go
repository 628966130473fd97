package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookwise/booking-platform/internal/core/domain"
	"github.com/bookwise/booking-platform/internal/core/port"
	"github.com/bookwise/booking-platform/internal/transport/http/middleware"
	"github.com/bookwise/booking-platform/internal/usecase"
)

// UserHandler exposes the authenticated profile and directory endpoints.
type UserHandler struct {
	auth     *usecase.AuthService
	verifier port.TokenVerifier
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(auth *usecase.AuthService, verifier port.TokenVerifier) *UserHandler {
	return &UserHandler{auth: auth, verifier: verifier}
}

// RegisterRoutes binds the user routes. All routes require authentication;
// the client directory additionally requires the admin role.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	authed := r.Group("", middleware.RequireAuth(h.verifier))
	authed.GET("/profile", h.profile)
	authed.PUT("/profile", h.updateProfile)
	authed.PUT("/password", h.changePassword)
	authed.GET("/admins", h.listAdmins)
	authed.GET("/clients", middleware.RequireRole(domain.RoleAdmin), h.listClients)
}

func (h *UserHandler) profile(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	profile, err := h.auth.Profile(c.Request.Context(), principal.ID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to load profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) updateProfile(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid profile payload"))
		return
	}

	profile, err := h.auth.UpdateProfile(c.Request.Context(), principal.ID, req.FullName, req.Email)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to update profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) changePassword(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid password payload"))
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), principal.ID, req.OldPassword, req.NewPassword); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "current password is incorrect"},
			{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to change password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
}

func (h *UserHandler) listAdmins(c *gin.Context) {
	profiles, err := h.auth.ListAdmins(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list admins"))
		return
	}

	c.JSON(http.StatusOK, profiles)
}

func (h *UserHandler) listClients(c *gin.Context) {
	profiles, err := h.auth.ListClients(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list clients"))
		return
	}

	c.JSON(http.StatusOK, profiles)
}
