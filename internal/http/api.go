package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"account-api/internal/auth"
	"account-api/internal/service"
)

// Handler wires HTTP routes to the account services.
type Handler struct {
	accounts service.AccountService
	resets   service.PasswordResetService
	auth     *auth.Middleware
	logger   *logrus.Logger
}

func NewHandler(accounts service.AccountService, resets service.PasswordResetService, authMiddleware *auth.Middleware, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		accounts: accounts,
		resets:   resets,
		auth:     authMiddleware,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(), requestLogger(h.logger))

	router.GET("/", h.index)
	router.GET("/auth", h.auth.Protect(h.checkAuth))
	router.POST("/auth", h.auth.Protect(h.checkAuth))
	router.POST("/signup", h.signup)
	router.POST("/login", h.login)

	user := router.Group("/user")
	{
		user.POST("/update/profile", h.auth.Protect(h.updateProfile))
		user.POST("/update/password", h.auth.Protect(h.updatePassword))
		user.POST("/delete", h.auth.Protect(h.deleteAccount))
		user.POST("/forgot/password", h.forgotPassword)
		user.POST("/reset/password/:token", h.resetPassword)
	}
}

func (h *Handler) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello API"})
}

func (h *Handler) checkAuth(c *gin.Context, _ auth.Identity) {
	c.JSON(http.StatusOK, gin.H{"message": "logged"})
}

func (h *Handler) signup(c *gin.Context) {
	var req service.SignupInput
	if !h.bind(c, &req) {
		return
	}

	user, err := h.accounts.Signup(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) login(c *gin.Context) {
	var req service.LoginInput
	if !h.bind(c, &req) {
		return
	}

	tok, err := h.accounts.Login(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tok})
}

func (h *Handler) updateProfile(c *gin.Context, identity auth.Identity) {
	var req service.ProfileInput
	if !h.bind(c, &req) {
		return
	}

	tok, err := h.accounts.UpdateProfile(c.Request.Context(), identity.ID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tok})
}

func (h *Handler) updatePassword(c *gin.Context, identity auth.Identity) {
	var req service.PasswordInput
	if !h.bind(c, &req) {
		return
	}

	tok, err := h.accounts.UpdatePassword(c.Request.Context(), identity.ID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tok})
}

func (h *Handler) deleteAccount(c *gin.Context, identity auth.Identity) {
	if err := h.accounts.DeleteAccount(c.Request.Context(), identity.ID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var req service.ForgotPasswordInput
	if !h.bind(c, &req) {
		return
	}

	if err := h.resets.ForgotPassword(c.Request.Context(), req); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "email sended"})
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req service.PasswordInput
	if !h.bind(c, &req) {
		return
	}

	if err := h.resets.ResetPassword(c.Request.Context(), c.Param("token"), req); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "email sended"})
}

// bind decodes the JSON body into req. An empty body leaves req zeroed so
// field validation reports what is missing.
func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return false
	}
	return true
}
