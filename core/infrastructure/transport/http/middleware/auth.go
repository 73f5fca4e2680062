package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
)

// RequireHeaders rejects requests missing any of the named headers with 401
func RequireHeaders(headers ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var missing []string
			for _, h := range headers {
				if strings.TrimSpace(r.Header.Get(h)) == "" {
					missing = append(missing, h)
				}
			}
			if len(missing) > 0 {
				writeDetail(w, http.StatusUnauthorized, "missing credentials: "+strings.Join(missing, ", "))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
