package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/multimongo/errors"
)

// DataResponse is the success envelope.
type DataResponse struct {
	Data any `json:"data"`
}

// RespondOK sends 200 with data wrapped in the envelope.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

// RespondWithError derives status and body from an *errors.AppError in
// err's chain and falls back to 500.
func RespondWithError(c *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		c.JSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}
	c.JSON(http.StatusInternalServerError, apperrors.Internal(err).ToResponse())
}
