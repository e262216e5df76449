package httpsrv

import (
	"fmt"
	"net/http"

	"pairdist/auth"
	. "pairdist/common"
)

// Wrap `h` so that every request must carry HTTP basic authentication credentials accepted by
// `authenticator`.  Failures get a 401 with a challenge for `realm` and are logged.
//
// The realm name should not contain a `"` character.

func RequireAuth(h http.Handler, authenticator *auth.Authenticator, realm string, verbose bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || !authenticator.Authenticate(user, pass) {
			w.Header().Add("WWW-Authenticate", "Basic realm=\""+realm+"\", charset=\"utf-8\"")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprintf(w, "Unauthorized")
			if verbose {
				Log.Warningf("Authorization failed for %s %s", r.Method, r.URL.Path)
			}
			return
		}
		h.ServeHTTP(w, r)
	})
}
