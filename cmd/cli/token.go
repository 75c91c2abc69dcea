package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mangashelf/internal/auth"
	"mangashelf/pkg/config"
)

type tokenData struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

var tokenSave bool

var tokenCmd = &cobra.Command{
	Use:   "token [subject]",
	Short: "Mint a bearer token from the server's auth secret",
	Long: "Mint a bearer token signed with auth.secret from --config (or MANGASHELF_JWT_SECRET). " +
		"Only needed when the server guards its mutating routes.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if !cfg.AuthEnabled() {
			return errors.New("auth.secret is not configured; the server accepts unauthenticated writes")
		}

		subject := "owner"
		if len(args) == 1 {
			subject = args[0]
		}

		ts := auth.NewTokenService(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL.Duration)
		token, exp, err := ts.Sign(subject)
		if err != nil {
			return err
		}

		if tokenSave {
			if err := saveToken(tokenPath, tokenData{Token: token, ExpiresAt: exp}); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token saved to %s (expires %s)\n", tokenPath, exp.Format(time.RFC3339))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().BoolVar(&tokenSave, "save", false, "store the token in --token-file instead of printing it")
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.mangashelf-token.json"
	}
	return filepath.Join(home, ".mangashelf", "token.json")
}

func saveToken(path string, td tokenData) error {
	if td.Token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(td, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return "", err
	}
	if !td.ExpiresAt.IsZero() && time.Now().After(td.ExpiresAt) {
		return "", errors.New("saved token has expired")
	}
	return strings.TrimSpace(td.Token), nil
}

// currentToken prefers --token, then the saved token file. A missing file
// just means requests go out unauthenticated.
func currentToken() string {
	if tokenFlag != "" {
		return tokenFlag
	}
	token, err := readToken(tokenPath)
	if err != nil {
		return ""
	}
	return token
}
