package middleware

import (
	"context"
	"net/http"

	"golang.org/x/text/language"

	"github.com/mcoot/arkham-companion/internal/model"
)

// Locale resolves the request locale from Accept-Language
func Locale(languages model.Languages) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := resolveLocale(r.Header.Get("Accept-Language"), languages)
			ctx := context.WithValue(r.Context(), localeContextKey, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveLocale picks the first available language in Accept-Language
// preference order, matching on the primary subtag
func resolveLocale(header string, languages model.Languages) model.Locale {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return languages.App
	}
	for _, tag := range tags {
		base, confidence := tag.Base()
		if confidence == language.No {
			continue
		}
		if locale := model.Locale(base.String()); languages.Supports(locale) {
			return locale
		}
	}
	return languages.App
}

// LocaleFrom returns the request locale, or empty when the middleware did not run
func LocaleFrom(ctx context.Context) model.Locale {
	locale, _ := ctx.Value(localeContextKey).(model.Locale)
	return locale
}
