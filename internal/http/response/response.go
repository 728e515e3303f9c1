package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sheetshare-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError maps err to a status through its apierr kind. Errors with
// no kind are reported as 500 without leaking their message.
func RespondAPIError(c *gin.Context, err error) {
	var e *apierr.Error
	if errors.As(err, &e) && e != nil {
		status := e.Status
		if k := apierr.KindOf(err); k != apierr.KindUnknown {
			status = k.Status()
		}
		if status == 0 {
			status = http.StatusInternalServerError
		}
		RespondError(c, status, e.Code, e)
		return
	}
	_ = c.Error(err)
	RespondError(c, http.StatusInternalServerError, "internal", errors.New("internal server error"))
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
