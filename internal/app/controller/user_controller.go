package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hyeonlab/accounts-backend/internal/app/model"
	"github.com/hyeonlab/accounts-backend/internal/app/repository"
	"github.com/hyeonlab/accounts-backend/internal/app/service"
	apperrors "github.com/hyeonlab/accounts-backend/internal/errors"
	"github.com/hyeonlab/accounts-backend/internal/middleware"
	"github.com/hyeonlab/accounts-backend/internal/validation"
)

type UserController struct {
	userService service.UserService
}

func NewUserController(userService service.UserService) *UserController {
	return &UserController{userService: userService}
}

// List returns a page of users
// GET /api/v1/users
func (ctrl *UserController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	filter := repository.UserFilter{
		Status: c.Query("status"),
		Name:   c.Query("name"),
		Email:  c.Query("email"),
	}

	result, err := ctrl.userService.List(page, pageSize, filter)
	if err != nil {
		log.Error("Failed to list users", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"total":     result.Total,
		"page":      result.Page,
		"last_page": result.LastPage,
		"data":      result.Users,
	})
}

// Get returns a single user
// GET /api/v1/users/:id
func (ctrl *UserController) Get(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseUserID(c)
	if !ok {
		return
	}

	user, err := ctrl.userService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		log.Error("Failed to get user", err, map[string]interface{}{
			"user_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// Create adds a user
// POST /api/v1/users
func (ctrl *UserController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req validation.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	errs, err := validation.Run(&req,
		validation.UniqueEmail(ctrl.userService.EmailTaken, req.Email, 0),
	)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	if errs.Any() {
		apperrors.RespondWithValidationError(c, errs)
		return
	}

	user, err := ctrl.userService.Create(req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) || apperrors.IsUniqueViolation(err, "email") {
			apperrors.RespondWithValidationError(c, map[string]string{
				"email": "Email is already taken",
			})
			return
		}
		log.Error("Failed to create user", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    user,
	})
}

// Update modifies a user
// PUT /api/v1/users/:id
func (ctrl *UserController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseUserID(c)
	if !ok {
		return
	}

	var req validation.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	errs, err := validation.Run(&req,
		validation.UniqueEmail(ctrl.userService.EmailTaken, req.Email, id),
	)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	if errs.Any() {
		apperrors.RespondWithValidationError(c, errs)
		return
	}

	var password *string
	if req.Password != "" {
		password = &req.Password
	}
	var status *model.UserStatus
	if req.Status != "" {
		s := model.UserStatus(req.Status)
		status = &s
	}

	user, err := ctrl.userService.Update(id, &req.Name, &req.Email, password, status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
		case errors.Is(err, service.ErrEmailAlreadyExists), apperrors.IsUniqueViolation(err, "email"):
			apperrors.RespondWithValidationError(c, map[string]string{
				"email": "Email is already taken",
			})
		default:
			log.Error("Failed to update user", err, map[string]interface{}{
				"user_id": id,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update user")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// Delete removes a user
// DELETE /api/v1/users/:id
func (ctrl *UserController) Delete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseUserID(c)
	if !ok {
		return
	}

	if err := ctrl.userService.Delete(id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		log.Error("Failed to delete user", err, map[string]interface{}{
			"user_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User deleted successfully",
	})
}

func parseUserID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid user id")
		return 0, false
	}
	return uint(id), true
}
