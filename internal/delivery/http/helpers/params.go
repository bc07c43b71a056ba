package helpers

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// PathID parses the named path value as a positive id.
func PathID(r *http.Request, name string) (int64, error) {
	return parseID(name, r.PathValue(name))
}

// QueryID parses the named query parameter as a positive id.
func QueryID(r *http.Request, name string) (int64, error) {
	return parseID(name, r.URL.Query().Get(name))
}

func parseID(name, s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("missing %s", name)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return id, nil
}

// QueryList returns the named parameter, accepting repeated keys as well as
// comma separated values.
func QueryList(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.URL.Query()[name] {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// ClientIP returns the caller address without port. RealIP middleware has
// already replaced RemoteAddr with the forwarded address when present.
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
