package middleware

import (
	"errors"

	apiError "cmsmall/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next() // Execute the handler first

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var apiErr *apiError.APIError
		if !errors.As(err, &apiErr) {
			// If it's a raw error we didn't wrap, treat as Internal
			apiErr = apiError.Internal(err)
		}

		event := log.Info()
		if apiErr.Status >= 500 {
			event = log.Error()
		}
		event.Err(apiErr.Internal).
			Int("status", apiErr.Status).
			Str("request_id", c.GetString(requestIDKey)).
			Msg(apiErr.Message)

		c.AbortWithStatusJSON(apiErr.Status, apiErr)
	}
}
