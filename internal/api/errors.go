package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Jrygg01/FrameForge/internal/core"
)

type errorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func statusFor(kind core.ErrorKind) int {
	switch kind {
	case core.KindValidation:
		return http.StatusBadRequest
	case core.KindRefusal:
		return http.StatusUnprocessableEntity
	case core.KindIncomplete, core.KindMalformed:
		return http.StatusBadGateway
	case core.KindTransport:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as the uniform failure body. Unclassified errors
// become 500s whose text is only shown outside production.
func (s *Server) writeError(c echo.Context, err error) error {
	var ce *core.Error
	if !errors.As(err, &ce) {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			ce = core.TransportError(err)
			ce.Message = "model provider did not answer in time"
		} else {
			ce = &core.Error{Message: "internal error", Err: err}
		}
	}

	status := statusFor(ce.Kind)
	body := errorResponse{Error: ce.Message, Kind: string(ce.Kind)}
	if !s.cfg.Production {
		body.Detail = ce.Detail
		if body.Detail == "" && ce.Err != nil {
			body.Detail = ce.Err.Error()
		}
	}

	logger := core.ComponentLogger(c.Request().Context(), s.logger, "api")
	if status >= http.StatusInternalServerError {
		logger.Error("generation failed", "status", status, "kind", string(ce.Kind), "error", err)
	} else {
		logger.Info("request rejected", "status", status, "kind", string(ce.Kind), "error", err)
	}
	return c.JSON(status, body)
}
