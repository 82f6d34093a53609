package handler

import (
	"errors"
	"net/http"

	"github.com/bitnshop/bitnshop/internal/authz"
	"github.com/bitnshop/bitnshop/internal/middleware"
	"github.com/bitnshop/bitnshop/internal/models"
	"github.com/bitnshop/bitnshop/internal/service"
	"github.com/bitnshop/bitnshop/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler backs the cpanel user management screens.
type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type CreateUserRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Password  string `json:"password" binding:"required"`
	Role      string `json:"role"`
}

type ReplaceRolesRequest struct {
	Roles []string `json:"roles" binding:"required"`
}

// ListUsers returns one page of accounts.
// GET /api/cpanel/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, perPage := pagination(c)

	users, total, err := h.userService.ListUsers(page, perPage)
	if err != nil {
		logger.Log.Error("Failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}

	views := make([]gin.H, 0, len(users))
	for _, user := range users {
		views = append(views, userView(user))
	}

	c.JSON(http.StatusOK, gin.H{
		"users":    views,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// GetUser returns one account with profile and address.
// GET /api/cpanel/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userView(user)})
}

// CreateUser adds an account with a chosen role. The generated
// credentials are emailed to the new user.
// POST /api/cpanel/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	// Omitted role means a plain customer account
	role := authz.RoleCustomer
	if req.Role != "" {
		parsed, ok := authz.ParseRoleName(req.Role)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role: " + req.Role})
			return
		}
		role = parsed
	}

	user, err := h.userService.CreateUser(c.Request.Context(), middleware.CurrentUserID(c), service.CreateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Password:  req.Password,
		Role:      role,
	})
	if err != nil {
		statusCode := http.StatusBadRequest
		if errors.Is(err, service.ErrEmailAlreadyExists) || errors.Is(err, service.ErrUsernameAlreadyExists) {
			statusCode = http.StatusConflict
		}
		c.JSON(statusCode, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created",
		"user":    userView(user),
	})
}

// ReplaceRoles swaps a user's role set for the given one.
// PUT /api/cpanel/users/:id/roles
func (h *UserHandler) ReplaceRoles(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req ReplaceRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	roleNames := make([]authz.RoleName, 0, len(req.Roles))
	for _, raw := range req.Roles {
		parsed, ok := authz.ParseRoleName(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role: " + raw})
			return
		}
		roleNames = append(roleNames, parsed)
	}

	user, err := h.userService.ReplaceRoles(middleware.CurrentUserID(c), id, roleNames)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, service.ErrUnknownRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update roles"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Roles updated",
		"user":    userView(user),
	})
}

// DeleteUser removes an account together with its profile, address
// and role assignments.
// DELETE /api/cpanel/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if id == middleware.CurrentUserID(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot delete your own account"})
		return
	}

	if err := h.userService.DeleteUser(middleware.CurrentUserID(c), id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// ListRoles returns the role enumeration for the cpanel role picker.
// GET /api/cpanel/roles
func (h *UserHandler) ListRoles(c *gin.Context) {
	roles, err := h.userService.ListRoles()
	if err != nil {
		logger.Log.Error("Failed to list roles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list roles"})
		return
	}

	views := make([]gin.H, 0, len(roles))
	for _, role := range roles {
		views = append(views, gin.H{
			"id":          role.ID,
			"name":        role.Name,
			"display":     role.Display(),
			"slug":        role.Slug,
			"description": role.Description,
		})
	}

	c.JSON(http.StatusOK, gin.H{"roles": views})
}

func userView(user *models.User) gin.H {
	view := gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"slug":       user.Slug,
		"roles":      user.RoleNames(),
		"created_at": user.CreatedAt,
	}
	if user.Profile != nil {
		view["firstname"] = user.Profile.Firstname
		view["lastname"] = user.Profile.Lastname
	}
	return view
}
