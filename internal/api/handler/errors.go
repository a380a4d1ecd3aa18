package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/arkham-companion/internal/api/apierr"
	"github.com/mcoot/arkham-companion/internal/api/middleware"
	"github.com/mcoot/arkham-companion/internal/model"
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	apierr.WriteError(w, r, err)
}

// pathID parses a numeric route variable
func pathID[T ~uint](r *http.Request, name string) (T, error) {
	v, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil || v == 0 {
		return 0, apierr.NewInvalidRequestError(fmt.Sprintf("invalid %s", name))
	}
	return T(v), nil
}

func sessionToken(r *http.Request) model.GameSessionToken {
	return model.GameSessionToken(mux.Vars(r)[middleware.SessionVar])
}

func pathLocale(r *http.Request) model.Locale {
	return model.Locale(mux.Vars(r)["locale"])
}
