package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/stackplate/pkg/jwtx"
	"github.com/aussiebroadwan/stackplate/pkg/slogx"
)

// AuthnMiddleware only lets requests through that carry a valid bearer token
// of the given kind. Anything else is answered with 403 InvalidToken and the
// handler never runs.
//
// Verified claims land in the request context. For session tokens the subject
// is also forwarded in the User-UUID header, which is always stripped from the
// inbound request so it can't be spoofed.
func AuthnMiddleware(v jwtx.Verifier, kind jwtx.Kind) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Header.Del(UserUUIDHeader)

			raw, ok := BearerToken(r)
			if !ok {
				WriteError(w, http.StatusForbidden, ErrTypeInvalidToken, "missing bearer token")
				return
			}

			claims, err := v.Verify(raw, kind)
			if err != nil {
				slogx.FromContext(r.Context()).Warn("jwt verify failed", "kind", kind, "err", err)
				WriteError(w, http.StatusForbidden, ErrTypeInvalidToken, "invalid token")
				return
			}

			ctx := slogx.With(contextWithAuth(r.Context(), claims), "user_uuid", claims.Subject)
			r = r.WithContext(ctx)
			if kind == jwtx.KindSession {
				r.Header.Set(UserUUIDHeader, claims.Subject)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePrivileged rejects requests whose verified claims don't carry the
// privilege flag. Must run after AuthnMiddleware for access tokens.
func RequirePrivileged() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || claims.Kind != jwtx.KindAccess || !claims.Privileged {
				WriteError(w, http.StatusForbidden, ErrTypeAccessDenied, "access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken pulls the token out of "Authorization: Bearer <token>". The
// scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// SetBearer writes token into the Authorization response header.
func SetBearer(w http.ResponseWriter, token string) {
	w.Header().Set("Authorization", "Bearer "+token)
}
