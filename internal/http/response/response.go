package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/model3d-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func envelope(code string, err error) ErrorEnvelope {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return ErrorEnvelope{Error: APIError{Message: msg, Code: code}}
}

func RespondError(c *gin.Context, status int, code string, err error) {
	c.JSON(status, envelope(code, err))
}

// RespondAPIError derives status and code from the error's kind.
func RespondAPIError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	RespondError(c, StatusFor(err), apierr.CodeOf(err), err)
}

// Abort writes the error envelope and stops the handler chain.
func Abort(c *gin.Context, status int, code string, err error) {
	c.AbortWithStatusJSON(status, envelope(code, err))
}

func StatusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return apierr.HTTPStatus(apierr.KindOf(err))
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
