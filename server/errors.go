package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/rushteam/citykit/core"
)

// statusOf maps a domain error to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, core.ErrNoMoreCities):
		return http.StatusNotFound
	case core.IsUnknownCategory(err), core.IsInvalidInput(err):
		return http.StatusBadRequest
	case core.IsNotFound(err):
		return http.StatusNotFound
	case core.IsStoreUnavailable(err), core.IsUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	status := statusOf(err)
	resp := ErrorResponse{Error: err.Error()}
	if de := core.GetDomainError(err); de != nil {
		resp.Code = de.Code
	}

	evt := log.Warn()
	if status >= http.StatusInternalServerError {
		evt = log.Error()
	}
	evt.Err(err).Str("route", c.FullPath()).Int("status", status).Msg("request failed")

	c.AbortWithStatusJSON(status, resp)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: core.ErrorCodeInvalidInput})
}
