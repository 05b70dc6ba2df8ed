package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/coachbar/catalog-api/internal/application"
	"github.com/coachbar/catalog-api/internal/domain/entity"
	"github.com/coachbar/catalog-api/internal/domain/repository"
	"github.com/coachbar/catalog-api/internal/interface/middleware"
	"github.com/coachbar/catalog-api/pkg/imagestore"
	"github.com/coachbar/catalog-api/pkg/response"
	"github.com/coachbar/catalog-api/pkg/validation"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Role     string `json:"role" binding:"required,oneof=admin user"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updateSelfRequest struct {
	Name string `json:"name" binding:"required"`
}

type updatePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,pwd"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     entity.Role(req.Role),
	})
	if err != nil {
		if errors.Is(err, application.ErrEmailTaken) {
			response.Error[any](c, http.StatusConflict, "User already exists", nil)
			return
		}
		h.Logger.WithError(err).Error("register user failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to register user", nil)
		return
	}
	response.Success(c, http.StatusCreated, u, "User registered successfully", nil)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	token, u, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			response.Error[any](c, http.StatusBadRequest, "Invalid credentials", nil)
			return
		}
		h.Logger.WithError(err).Error("login failed")
		response.Error[any](c, http.StatusInternalServerError, "login failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": token, "user": u}, "login successful", nil)
}

func (h *UserHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	users, total, err := h.Svc.List(c.Request.Context(), repository.UserQuery{
		Page:  page,
		Limit: limit,
		Sort:  c.DefaultQuery("sort", "name"),
		Order: c.DefaultQuery("order", "asc"),
	})
	if err != nil {
		h.Logger.WithError(err).Error("list users failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to list users", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": users, "total": total}, "users", nil)
}

func (h *UserHandler) UploadProfilePicture(c *gin.Context) {
	uid := middleware.Identity(c)

	file, err := c.FormFile("profile")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "Image is required", nil)
		return
	}
	f, err := file.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "Image is required", nil)
		return
	}
	defer func() { _ = f.Close() }()

	u, err := h.Svc.UploadProfilePicture(c.Request.Context(), uid, f)
	if err != nil {
		switch {
		case errors.Is(err, imagestore.ErrImageRequired):
			response.Error[any](c, http.StatusBadRequest, "Image is required", nil)
		case errors.Is(err, application.ErrUserNotFound):
			response.Error[any](c, http.StatusNotFound, "User not found", nil)
		default:
			h.Logger.WithError(err).Error("profile picture upload failed")
			response.Error[any](c, http.StatusInternalServerError, "failed to upload profile picture", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, u, "Profile picture uploaded successfully", nil)
}

func (h *UserHandler) UpdateSelf(c *gin.Context) {
	uid := middleware.Identity(c)

	var req updateSelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.UpdateSelf(c.Request.Context(), uid, req.Name)
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "User not found", nil)
			return
		}
		h.Logger.WithError(err).Error("update user failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to update user", nil)
		return
	}
	response.Success(c, http.StatusOK, u, "User updated successfully", nil)
}

func (h *UserHandler) UpdatePassword(c *gin.Context) {
	uid := middleware.Identity(c)

	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	err := h.Svc.UpdatePassword(c.Request.Context(), uid, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidCredentials):
			response.Error[any](c, http.StatusBadRequest, "Invalid old password", nil)
		case errors.Is(err, application.ErrUserNotFound):
			response.Error[any](c, http.StatusNotFound, "User not found", nil)
		default:
			h.Logger.WithError(err).Error("update password failed")
			response.Error[any](c, http.StatusInternalServerError, "failed to update password", nil)
		}
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Password updated successfully", nil)
}

func (h *UserHandler) Me(c *gin.Context) {
	uid := middleware.Identity(c)

	u, err := h.Svc.GetSelf(c.Request.Context(), uid)
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "User not found", nil)
		return
	}
	response.Success(c, http.StatusOK, u, "profile", nil)
}
