package httpx

import "net/http"

// RequireRole allows the request through when the authenticated role is one
// of the listed roles. Must run after AuthnMiddleware.
func RequireRole(roles ...string) Middleware {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := allowed[roleFromContext(r.Context())]; !ok {
				WriteJSON(w, http.StatusForbidden, map[string]string{
					"error": "insufficient_role",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
