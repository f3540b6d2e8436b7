package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"neuromentor/internal/app"
	"neuromentor/internal/model"
	"neuromentor/internal/transport/http/response"
)

type AdminHandler struct {
	adminService *app.AdminService
}

type AdminLoginRequest struct {
	UserID   uint   `json:"user_id" binding:"required"`
	Password string `json:"password" binding:"required,max=128"`
}

type AdminLoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

type UserDetailResponse struct {
	User          UserResponse         `json:"user"`
	Subscriptions []model.Subscription `json:"subscriptions"`
	Usage         []model.UsageLog     `json:"usage"`
}

func NewAdminHandler(adminService *app.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.adminService.Login(c.Request.Context(), app.LoginInput{
		UserID:   req.UserID,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, app.ErrInvalidCredential):
			response.Error(c, http.StatusUnauthorized, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "login failed")
		}
		return
	}

	response.OK(c, AdminLoginResponse{Token: result.Token, Role: result.Role})
}

func (h *AdminHandler) UserDetail(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, "invalid user id")
		return
	}

	detail, err := h.adminService.UserDetail(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrUserNotFound):
			response.Error(c, http.StatusNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "fetch user detail failed")
		}
		return
	}

	response.OK(c, UserDetailResponse{
		User:          newUserResponse(detail.User),
		Subscriptions: detail.Subscriptions,
		Usage:         detail.Usage,
	})
}
