package main

import (
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const defaultBaseURL = "http://localhost:8080"

var (
	apiURL     string
	tokenFlag  string
	tokenPath  string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:          "mangashelf",
	Short:        "Track your manga reading from the terminal",
	Long:         "Search the manga catalog, keep a shelf of saved titles and record how far you have read.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("MANGASHELF_API", defaultBaseURL), "API base URL")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", os.Getenv("MANGASHELF_TOKEN"), "bearer token for mutating requests")
	rootCmd.PersistentFlags().StringVar(&tokenPath, "token-file", defaultTokenPath(), "where `token --save` stores the token")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("MANGASHELF_CONFIG"), "server config file, read by the token command")

	rootCmd.AddCommand(searchCmd, showCmd, listCmd, addCmd, importCmd, progressCmd, rmCmd, tokenCmd, listenCmd)
}

func newAPI() *apiClient {
	return &apiClient{
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		BaseURL: apiURL,
		Token:   currentToken(),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
