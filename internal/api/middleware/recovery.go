package middleware

import (
	"net/http"

	"github.com/mcoot/arkham-companion/internal/api/apierr"
	"github.com/mcoot/arkham-companion/internal/middleware"
)

// Recovery creates panic recovery middleware for the API
// Returns JSON error responses on panic
func Recovery() func(http.Handler) http.Handler {
	return middleware.Recovery(apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, r *http.Request, _ any) {
	apierr.WriteError(w, r, apierr.NewInternalError())
}
