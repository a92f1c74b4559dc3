package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"account-api/internal/service"
	"account-api/internal/validation"
)

var errorResponses = []struct {
	err     error
	status  int
	message string
}{
	{service.ErrDuplicateAccount, http.StatusBadRequest, "Account with that email address already exists"},
	{service.ErrAccessDenied, http.StatusBadRequest, "access denied"},
	{service.ErrDuplicateEmail, http.StatusBadRequest, "The email address you have entered is already associated with an account."},
	{service.ErrDeleteFailed, http.StatusBadRequest, "cannot delete user"},
	{service.ErrAccountNotFound, http.StatusBadRequest, "Account with that email address does not exist."},
	{service.ErrTokenInvalidOrExpired, http.StatusBadRequest, "token invalid or has expired"},
	// kept as 500 for compatibility with existing clients
	{service.ErrUserNotFound, http.StatusInternalServerError, "user not found"},
	{service.ErrMailDeliveryFailed, http.StatusInternalServerError, "error sending email"},
}

// statusFor maps an error to its HTTP status and public message.
func statusFor(err error) (int, string) {
	for _, r := range errorResponses {
		if errors.Is(err, r.err) {
			return r.status, r.message
		}
	}
	return http.StatusInternalServerError, err.Error()
}

func (h *Handler) fail(c *gin.Context, err error) {
	var fields validation.Errors
	if errors.As(err, &fields) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fields})
		return
	}

	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
	}
	c.JSON(status, gin.H{"message": message})
}
