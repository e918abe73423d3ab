package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanqian/billing-dashboard/internal/chart"
	"github.com/yanqian/billing-dashboard/internal/domain/billing"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show monthly bills and the hike advisory",
	RunE:  runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

// errStaleView is returned when the API dropped the request mid-flight.
var errStaleView = errors.New("dashboard request was cancelled before it finished, try again")

func runDashboard(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
	defer cancel()

	dash, raw, err := fetchDashboard(ctx, http.DefaultClient, flagServer, flagToken)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		_, err := out.Write(append(raw, '\n'))
		return err
	}
	if strings.TrimSpace(flagToken) == "" && len(dash.Records) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "  No access token given; set --token or SUPABASE_ACCESS_TOKEN.")
	}
	fmt.Fprint(out, chart.Render(dash, flagWidth))
	return nil
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func fetchDashboard(ctx context.Context, client *http.Client, server, token string) (billing.Dashboard, []byte, error) {
	endpoint := strings.TrimRight(server, "/") + "/api/v1/billing/dashboard"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return billing.Dashboard{}, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token = strings.TrimSpace(token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return billing.Dashboard{}, nil, fmt.Errorf("dashboard request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return billing.Dashboard{}, nil, fmt.Errorf("read dashboard: %w", err)
	}

	if resp.StatusCode == http.StatusConflict {
		return billing.Dashboard{}, raw, errStaleView
	}
	if resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return billing.Dashboard{}, raw, fmt.Errorf("dashboard api %s: %s", apiErr.Error.Code, apiErr.Error.Message)
		}
		return billing.Dashboard{}, raw, fmt.Errorf("dashboard api returned status %d", resp.StatusCode)
	}

	var dash billing.Dashboard
	if err := json.Unmarshal(raw, &dash); err != nil {
		return billing.Dashboard{}, raw, fmt.Errorf("decode dashboard: %w", err)
	}
	return dash, raw, nil
}
