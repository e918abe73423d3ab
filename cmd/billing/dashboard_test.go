package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetchDashboard_SendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/billing/dashboard", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"records":[{"month":"2024-01","total_amount":12.5,"user_id":"u"}],"generated_at":"2024-02-01T00:00:00Z"}`))
	}))
	defer server.Close()

	dash, raw, err := fetchDashboard(context.Background(), server.Client(), server.URL+"/", " tok ")
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	require.Len(t, dash.Records, 1)
	require.Equal(t, 12.5, dash.Records[0].TotalAmount)
	require.Nil(t, dash.Hike)
}

func TestFetchDashboard_OmitsEmptyToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"records":[]}`))
	}))
	defer server.Close()

	dash, _, err := fetchDashboard(context.Background(), server.Client(), server.URL, "")
	require.NoError(t, err)
	require.Empty(t, dash.Records)
}

func TestFetchDashboard_StaleView(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"code":"stale_view","message":"superseded"}}`))
	}))
	defer server.Close()

	_, _, err := fetchDashboard(context.Background(), server.Client(), server.URL, "tok")
	require.ErrorIs(t, err, errStaleView)
}

func TestFetchDashboard_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"dashboard_failed","message":"boom"}}`))
	}))
	defer server.Close()

	_, _, err := fetchDashboard(context.Background(), server.Client(), server.URL, "tok")
	require.ErrorContains(t, err, "dashboard_failed: boom")
}
