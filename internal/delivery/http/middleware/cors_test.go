package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name        string
		allowed     []string
		method      string
		origin      string
		preflight   bool
		wantStatus  int
		wantAllow   string
		wantCreds   string
		wantMethods string
	}{
		{"preflight allowed", []string{"http://app.test/"}, http.MethodOptions, "http://app.test", true, http.StatusNoContent, "http://app.test", "true", corsAllowMethods},
		{"preflight other origin", []string{"http://app.test"}, http.MethodOptions, "http://evil.test", true, http.StatusNoContent, "", "", ""},
		{"simple allowed", []string{"http://app.test"}, http.MethodGet, "http://app.test", false, http.StatusOK, "http://app.test", "true", ""},
		{"simple without origin", []string{"http://app.test"}, http.MethodGet, "", false, http.StatusOK, "", "", ""},
		{"wildcard", []string{"*"}, http.MethodGet, "http://any.test", false, http.StatusOK, "*", "", ""},
		{"listed origin wins over wildcard", []string{"*", "http://app.test"}, http.MethodGet, "http://app.test", false, http.StatusOK, "http://app.test", "true", ""},
		{"plain options reaches handler", []string{"http://app.test"}, http.MethodOptions, "http://app.test", false, http.StatusOK, "http://app.test", "true", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := CORS(tt.allowed, next)
			req := httptest.NewRequest(tt.method, "/events", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			require.Equal(t, tt.wantStatus, rr.Code)
			require.Equal(t, tt.wantAllow, rr.Header().Get("Access-Control-Allow-Origin"))
			require.Equal(t, tt.wantCreds, rr.Header().Get("Access-Control-Allow-Credentials"))
			require.Equal(t, tt.wantMethods, rr.Header().Get("Access-Control-Allow-Methods"))
		})
	}
}
