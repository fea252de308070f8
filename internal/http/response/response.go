package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avelldro/converse-backend/internal/platform/fault"
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

// RespondFault maps a classified error onto an HTTP status.
func RespondFault(c *gin.Context, err error) {
	switch fault.KindOf(err) {
	case fault.KindNotFound:
		RespondError(c, http.StatusNotFound, string(fault.KindNotFound), err)
	case fault.KindValidation:
		RespondError(c, http.StatusBadRequest, string(fault.KindValidation), err)
	case fault.KindUpstream:
		RespondError(c, http.StatusBadGateway, string(fault.KindUpstream), err)
	case fault.KindConfiguration:
		RespondError(c, http.StatusInternalServerError, string(fault.KindConfiguration), err)
	default:
		RespondError(c, http.StatusInternalServerError, string(fault.KindStorage), err)
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondAccepted(c *gin.Context, payload any) {
	c.JSON(http.StatusAccepted, payload)
}
