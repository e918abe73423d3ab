package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/billing-dashboard/internal/domain/auth"
	"github.com/yanqian/billing-dashboard/internal/domain/billing"
	"github.com/yanqian/billing-dashboard/internal/infra/config"
	apperrors "github.com/yanqian/billing-dashboard/pkg/errors"
)

func TestRouter_DashboardSuccess(t *testing.T) {
	want := billing.Dashboard{
		Records: []billing.Record{
			{Month: "2024-01", TotalAmount: 100, UserID: "user-1"},
			{Month: "2024-02", TotalAmount: 150, UserID: "user-1"},
		},
		Advisory:    "Roaming charges.",
		Hike:        &billing.Hike{Baseline: []float64{100, 100, 100, 100, 100}, Average: 100, Current: 150, CurrentMonth: "2024-02"},
		GeneratedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	svc := &stubBilling{
		dashboardFn: func(ctx context.Context) (billing.Dashboard, error) {
			token, ok := auth.AccessTokenFrom(ctx)
			require.True(t, ok)
			require.Equal(t, "user-token", token)
			return want, nil
		},
	}

	recorder := performRequest(http.MethodGet, "/api/v1/billing/dashboard", "Bearer user-token", newRouterUnderTest(t, svc, nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got billing.Dashboard
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, want, got)
}

func TestRouter_DashboardWithoutTokenIsEmpty(t *testing.T) {
	svc := &stubBilling{
		dashboardFn: func(ctx context.Context) (billing.Dashboard, error) {
			_, ok := auth.AccessTokenFrom(ctx)
			require.False(t, ok)
			return billing.Dashboard{Records: []billing.Record{}}, nil
		},
	}

	recorder := performRequest(http.MethodGet, "/api/v1/billing/dashboard", "Basic Zm9vOmJhcg==", newRouterUnderTest(t, svc, nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, []any{}, body["records"])
	require.NotContains(t, body, "advisory")
	require.NotContains(t, body, "hike")
}

func TestRouter_ForwardsViewID(t *testing.T) {
	var got []string
	svc := &stubBilling{
		dashboardFn: func(ctx context.Context) (billing.Dashboard, error) {
			viewID, ok := billing.ViewIDFrom(ctx)
			if ok {
				got = append(got, viewID)
			}
			return billing.Dashboard{Records: []billing.Record{}}, nil
		},
	}
	server := newRouterUnderTest(t, svc, nil)

	for _, header := range []string{" tab-a ", "", strings.Repeat("x", 65)} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/billing/dashboard", nil)
		req.Header.Set("X-View-ID", header)
		rec := httptest.NewRecorder()
		server.Handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	require.Equal(t, []string{"tab-a"}, got)
}

func TestRouter_DashboardCancelledRequest(t *testing.T) {
	svc := &stubBilling{
		dashboardFn: func(ctx context.Context) (billing.Dashboard, error) {
			return billing.Dashboard{}, apperrors.Wrap(apperrors.CodeStaleView, "dashboard request cancelled", context.Canceled)
		},
	}

	recorder := performRequest(http.MethodGet, "/api/v1/billing/dashboard", "", newRouterUnderTest(t, svc, nil))
	require.Equal(t, http.StatusConflict, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "stale_view", errBody["error"]["code"])
	require.Contains(t, errBody["error"]["message"], "cancelled")
}

func TestRouter_CORSPreflight(t *testing.T) {
	server := newRouterUnderTest(t, &stubBilling{}, []string{"https://app.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/billing/dashboard", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/billing/dashboard", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_Health(t *testing.T) {
	recorder := performRequest(http.MethodGet, "/healthz", "", newRouterUnderTest(t, &stubBilling{}, nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"status":"ok"}`, recorder.Body.String())
}

func TestBearerToken(t *testing.T) {
	require.Equal(t, "abc", bearerToken("Bearer abc"))
	require.Equal(t, "abc", bearerToken("bearer   abc "))
	require.Empty(t, bearerToken("Bearer"))
	require.Empty(t, bearerToken("Token abc"))
	require.Empty(t, bearerToken(""))
}

func performRequest(method, path, authorization string, server *http.Server) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, svc billing.Service, origins []string) *http.Server {
	t.Helper()
	handler := NewHandler(svc, newTestLogger())
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:        ":0",
			ReadTimeout:    time.Second,
			WriteTimeout:   time.Second,
			AllowedOrigins: origins,
		},
	}
	return NewRouter(cfg, handler)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubBilling struct {
	dashboardFn func(ctx context.Context) (billing.Dashboard, error)
}

func (s *stubBilling) Dashboard(ctx context.Context) (billing.Dashboard, error) {
	if s.dashboardFn != nil {
		return s.dashboardFn(ctx)
	}
	return billing.Dashboard{Records: []billing.Record{}}, nil
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
