package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// RespondAppError memetakan error taxonomy (validation/not found/forbidden)
// ke status HTTP yang sesuai. Error tak dikenal menjadi 500 generik tanpa
// membocorkan detail internal.
func RespondAppError(c *gin.Context, err error) {
	switch {
	case errors.As(err, new(*ValidationError)):
		RespondError(c, http.StatusBadRequest, err)
	case errors.As(err, new(*NotFoundError)):
		RespondError(c, http.StatusNotFound, err)
	case errors.As(err, new(*ForbiddenError)):
		RespondError(c, http.StatusForbidden, err)
	default:
		ErrorLogger.Printf("internal error: %v", err)
		RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
	}
}
