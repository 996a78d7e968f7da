package response

import (
	"errors"

	"github.com/gin-gonic/gin"
	domainerrors "shop-kita.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error maps an error onto the JSON error envelope. Non-AppError values and
// AppErrors marked non-exposable are reported as a generic internal error so
// infrastructure details never reach the client.
func Error(c *gin.Context, err error) {
	var appErr *domainerrors.AppError
	if !errors.As(err, &appErr) {
		appErr = domainerrors.InternalError(err)
	}

	message := appErr.Message
	if !appErr.Expose {
		message = "Internal server error"
	}

	c.JSON(appErr.Status, gin.H{
		"code":    appErr.Code,
		"message": message,
	})
}
