package middleware

import (
	"log/slog"
	"net/http"

	"github.com/brentkao/roomcoord/internal/api/apierr"
	"github.com/brentkao/roomcoord/internal/middleware"
)

// Recovery turns panics into JSON 500 responses
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
