package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/roomsync/internal/application"
)

func TestRequireSession(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		header     string
		cookie     *http.Cookie
		wantStatus int
		wantBody   string
	}{
		{name: "missing credentials", wantStatus: http.StatusUnauthorized, wantBody: "AUTH_SESSION_REQUIRED"},
		{name: "non bearer header", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantBody: "AUTH_SESSION_REQUIRED"},
		{name: "unknown token", header: "Bearer forged", wantStatus: http.StatusUnauthorized, wantBody: "AUTH_INVALID_CREDENTIALS"},
		{name: "pending teacher", cookie: &http.Cookie{Name: "session_token", Value: pendingToken}, wantStatus: http.StatusForbidden, wantBody: application.MessagePendingApproval},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			handler := RequireSession(sessionStub{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("next handler should not be called when authentication fails")
			}))

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, req)

			if recorder.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, recorder.Code)
			}
			if !strings.Contains(recorder.Body.String(), tc.wantBody) {
				t.Fatalf("expected body to mention %q, got %s", tc.wantBody, recorder.Body.String())
			}
		})
	}

	t.Run("attaches the principal", func(t *testing.T) {
		t.Parallel()

		var got application.Principal
		handler := RequireSession(sessionStub{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				t.Fatal("expected principal in request context")
			}
			got = principal
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+teacherToken)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, teacherPrincipal, got)
	})
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	handler := RequireRole(nil, application.RoleAdmin, application.RoleTeacher)(ok)

	cases := map[string]struct {
		principal *application.Principal
		want      int
	}{
		"admin":        {principal: &adminPrincipal, want: http.StatusNoContent},
		"teacher":      {principal: &teacherPrincipal, want: http.StatusNoContent},
		"student":      {principal: &studentPrincipal, want: http.StatusForbidden},
		"no principal": {want: http.StatusForbidden},
	}
	for name, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.principal != nil {
			req = req.WithContext(ContextWithPrincipal(req.Context(), *tc.principal))
		}
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)
		assert.Equal(t, tc.want, recorder.Code, name)
	}
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if LoggerFromContext(r.Context()) == nil {
			t.Fatal("expected a request scoped logger")
		}
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/rooms", nil))

	out := buf.String()
	assert.Contains(t, out, `"msg":"request completed"`)
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"path":"/rooms"`)
	assert.Contains(t, out, `"request_id":1`)
}
