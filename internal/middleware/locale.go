package middleware

import (
	"context"
	"net/http"

	"github.com/soaringjerry/findrisc/internal/utils"
)

type ctxKey int

const localeKey ctxKey = 1

// Locale resolves the request locale from ?lang= or Accept-Language against
// utils.SupportedLocales and stores it in the request context.
func Locale(def string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := utils.DetermineLocale(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"), utils.SupportedLocales, def)
			w.Header().Set("Content-Language", locale)
			ctx := context.WithValue(r.Context(), localeKey, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LocaleFromContext retrieves the locale stored by Locale.
func LocaleFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(localeKey).(string); ok && s != "" {
		return s
	}
	return "en"
}
