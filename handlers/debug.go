package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

// Debug echoes the request back together with build information and the
// network the server accepts addresses for.
func Debug(repoURL, sha1ver, buildtime, bech32Hrp string) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		v := mux.Vars(r)
		s := fmt.Sprintf("url: %s %s", r.Method, r.RequestURI)
		a := []string{s}

		a = append(a, "Headers:")
		for k, v := range r.Header {
			switch len(v) {
			case 0:
				a = append(a, k)
			case 1:
				a = append(a, fmt.Sprintf("  %s: %v", k, v[0]))
			default:
				a = append(a, "  "+k+":")
				for _, v2 := range v {
					a = append(a, "    "+v2)
				}
			}
		}

		a = append(a, "")
		a = append(a, fmt.Sprintf("ver: %s/commit/%s", repoURL, sha1ver))
		a = append(a, fmt.Sprintf("built on: %s", buildtime))
		a = append(a, fmt.Sprintf("network: %s", bech32Hrp))
		a = append(a, fmt.Sprintf("api version called: %s", v["apiVersion"]))

		s = strings.Join(a, "\n")

		servePlainText(rw, s)
	})
}

func servePlainText(rw http.ResponseWriter, s string) {
	rw.Header().Set("Content-Type", "text/plain")
	rw.Header().Set("Content-Length", strconv.Itoa(len(s)))
	rw.WriteHeader(http.StatusOK)
	_, _ = rw.Write([]byte(s))
}
