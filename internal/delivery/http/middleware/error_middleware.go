package middleware

import (
	"errors"
	"net/http"

	"go-hiring-backend/internal/delivery/http/response"
	"go-hiring-backend/pkg/apperror"
	"go-hiring-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Kind != apperror.KindInternal {
			response.Error(c, appErr.Code, appErr.Message, response.ErrorBody{Kind: string(appErr.Kind)})
			return
		}

		// Internal details stay in the server log.
		logger.Log.Error("internal server error",
			"request_id", response.RequestID(c),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		response.Error(c, http.StatusInternalServerError,
			"An unexpected error occurred. Please try again later.",
			response.ErrorBody{Kind: string(apperror.KindInternal)})
	}
}
