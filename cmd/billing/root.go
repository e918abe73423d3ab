package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	flagServer  string
	flagToken   string
	flagWidth   int
	flagTimeout time.Duration
	flagJSON    bool
)

var rootCmd = &cobra.Command{
	Use:          "billing",
	Short:        "Billing dashboard CLI",
	Long:         "Render your monthly bills and any hike advisory from the billing dashboard API.",
	SilenceUsage: true,
	RunE:         runDashboard,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	defaultServer := os.Getenv("BILLING_API_URL")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}

	rootCmd.PersistentFlags().StringVarP(&flagServer, "server", "s", defaultServer, "Dashboard API base URL")
	rootCmd.PersistentFlags().StringVarP(&flagToken, "token", "t", os.Getenv("SUPABASE_ACCESS_TOKEN"), "Supabase access token")
	rootCmd.PersistentFlags().IntVarP(&flagWidth, "width", "w", 72, "Chart width in columns")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 90*time.Second, "Request timeout")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print the raw dashboard JSON")
}
