package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/domain"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/port"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/transport/http/middleware"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/usecase"
)

// UserHandler exposes user administration and self-service endpoints.
type UserHandler struct {
	auth  *usecase.AuthService
	users *usecase.UserService
}

func NewUserHandler(auth *usecase.AuthService, users *usecase.UserService) *UserHandler {
	return &UserHandler{auth: auth, users: users}
}

// RegisterRoutes binds user routes. Administration is admin-only; the
// "me" endpoints serve any authenticated user.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/me", h.me)
	r.POST("/me/password", h.changePassword)

	admin := r.Group("", middleware.RequireRole(h.auth, domain.RoleAdmin))
	admin.GET("", h.list)
	admin.POST("", h.create)
	admin.GET("/:id", h.get)
	admin.PUT("/:id", h.update)
	admin.DELETE("/:id", h.delete)
}

func (h *UserHandler) me(c *gin.Context) {
	user, ok := middleware.AuthenticatedUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}
	c.JSON(http.StatusOK, toUserView(user.Sanitized()))
}

func (h *UserHandler) changePassword(c *gin.Context) {
	user, ok := middleware.AuthenticatedUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid password payload"))
		return
	}

	err := h.users.ChangePassword(c.Request.Context(), user.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrWrongPassword, Status: http.StatusUnauthorized, Message: "current password is incorrect"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "password does not meet policy requirements"},
		}, http.StatusInternalServerError, "password change failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
}

func (h *UserHandler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	page, err := h.users.List(c.Request.Context(), port.UserFilter{
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "list users failed"))
		return
	}

	views := make([]UserView, 0, len(page.Users))
	for _, user := range page.Users {
		views = append(views, toUserView(user))
	}
	c.JSON(http.StatusOK, UserListResponse{
		Users:  views,
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

var userWriteErrorCases = []ErrorCase{
	{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: "invalid user payload"},
	{Err: usecase.ErrUnknownRole, Status: http.StatusBadRequest, Message: "unknown role"},
	{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "password does not meet policy requirements"},
	{Err: usecase.ErrDuplicateIdentity, Status: http.StatusConflict, Message: "username or email already registered"},
	{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
	{Err: usecase.ErrRoleNotSeeded, Status: http.StatusInternalServerError, Message: "service misconfigured"},
}

func (h *UserHandler) create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid user payload"))
		return
	}

	user, err := h.users.Create(c.Request.Context(), usecase.CreateInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		RoleName:  req.Role,
	})
	if err != nil {
		RespondWithMappedError(c, err, userWriteErrorCases, http.StatusInternalServerError, "create user failed")
		return
	}

	c.JSON(http.StatusCreated, toUserView(*user))
}

func (h *UserHandler) get(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "get user failed")
		return
	}
	c.JSON(http.StatusOK, toUserView(*user))
}

func (h *UserHandler) update(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid user payload"))
		return
	}

	user, err := h.users.Update(c.Request.Context(), c.Param("id"), usecase.UpdateInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		RoleName:  req.Role,
	})
	if err != nil {
		RespondWithMappedError(c, err, userWriteErrorCases, http.StatusInternalServerError, "update user failed")
		return
	}

	c.JSON(http.StatusOK, toUserView(*user))
}

func (h *UserHandler) delete(c *gin.Context) {
	err := h.users.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
			{Err: usecase.ErrUserOwnsCustomers, Status: http.StatusConflict, Message: "user has customer records"},
		}, http.StatusInternalServerError, "delete user failed")
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "user deleted"})
}
