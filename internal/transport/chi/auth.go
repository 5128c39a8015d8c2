package chi

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// Routes served without credentials so probes and scrapers need no key.
var publicPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

var (
	errNoAuthHeader  = errors.New("missing authorization header")
	errNotBearer     = errors.New("authorization header must use Bearer scheme")
	errUnknownAPIKey = errors.New("invalid api key")
)

// BearerAuthMiddleware accepts requests carrying "Authorization: Bearer <key>"
// for one of apiKeys. Blank keys are ignored; with none left, auth is off.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			token, err := bearerToken(r)
			if err == nil && !knownKey(keys, token) {
				err = errUnknownAPIKey
			}
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="clubsearch"`)
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, err.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) ([]byte, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return nil, errNoAuthHeader
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return nil, errNotBearer
	}
	return []byte(auth[len(prefix):]), nil
}

// knownKey compares in constant time against every key.
func knownKey(keys [][]byte, token []byte) bool {
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare(k, token)
	}
	return found == 1
}
