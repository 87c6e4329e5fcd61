package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/usecase"
)

// AuthHandler exposes registration, login, and password reset endpoints.
type AuthHandler struct {
	auth         *usecase.AuthService
	registration *usecase.RegistrationService
	reset        *usecase.PasswordResetService
	isDev        bool
}

// AuthHandlerOption configures optional AuthHandler behaviour.
type AuthHandlerOption func(*AuthHandler)

// WithDevMode toggles development-only behaviour, such as returning reset
// tokens in responses instead of delivering them out of band.
func WithDevMode(isDev bool) AuthHandlerOption {
	return func(h *AuthHandler) { h.isDev = isDev }
}

func NewAuthHandler(auth *usecase.AuthService, registration *usecase.RegistrationService, reset *usecase.PasswordResetService, opts ...AuthHandlerOption) *AuthHandler {
	handler := &AuthHandler{auth: auth, registration: registration, reset: reset}
	for _, opt := range opts {
		if opt != nil {
			opt(handler)
		}
	}
	return handler
}

// RegisterRoutes binds authentication routes. Rate limit middleware is
// supplied per endpoint by the caller.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, registerLimit, loginLimit, resetLimit gin.HandlerFunc) {
	r.POST("/register", wrap(registerLimit, h.register)...)
	r.POST("/login", wrap(loginLimit, h.login)...)
	r.POST("/password-reset", wrap(resetLimit, h.requestReset)...)
	r.POST("/password-reset/complete", h.completeReset)
}

func wrap(mw gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	if mw == nil {
		return []gin.HandlerFunc{handler}
	}
	return []gin.HandlerFunc{mw, handler}
}

var registerErrorCases = []ErrorCase{
	{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: "invalid registration payload"},
	{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "password does not meet policy requirements"},
	{Err: usecase.ErrDuplicateIdentity, Status: http.StatusConflict, Message: "username or email already registered"},
	{Err: usecase.ErrRoleNotSeeded, Status: http.StatusInternalServerError, Message: "service misconfigured"},
}

func (h *AuthHandler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	result, err := h.registration.Register(c.Request.Context(), usecase.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		RespondWithMappedError(c, err, registerErrorCases, http.StatusInternalServerError, "registration failed")
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Token:     result.Token,
		TokenType: "Bearer",
		User:      toUserView(result.User),
	})
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	var clientIP *string
	if ip := c.ClientIP(); ip != "" {
		clientIP = &ip
	}

	result, err := h.auth.Login(c.Request.Context(), req.Identifier, req.Password, clientIP)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"},
		}, http.StatusInternalServerError, "login failed")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token:     result.Token,
		TokenType: "Bearer",
		User:      toUserView(result.User),
	})
}

// requestReset always responds with the same message so the endpoint does not
// reveal which emails are registered. In dev mode the token is returned
// directly for manual testing.
func (h *AuthHandler) requestReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset payload"))
		return
	}

	token, err := h.reset.RequestReset(c.Request.Context(), req.Email)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: "invalid reset payload"},
		}, http.StatusInternalServerError, "password reset failed")
		return
	}

	if h.isDev && token != "" {
		c.JSON(http.StatusAccepted, gin.H{
			"message": "if the email is registered, a reset link has been sent",
			"token":   token,
		})
		return
	}

	c.JSON(http.StatusAccepted, MessageResponse{
		Message: "if the email is registered, a reset link has been sent",
	})
}

func (h *AuthHandler) completeReset(c *gin.Context) {
	var req PasswordResetComplete
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset payload"))
		return
	}

	err := h.reset.CompleteReset(c.Request.Context(), req.Token, req.NewPassword)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrExpiredToken, Status: http.StatusUnauthorized, Message: "reset token expired"},
			{Err: usecase.ErrInvalidToken, Status: http.StatusUnauthorized, Message: "invalid reset token"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "password does not meet policy requirements"},
		}, http.StatusInternalServerError, "password reset failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
}
