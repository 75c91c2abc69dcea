package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the manga catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := newAPI().Search(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), searchTable(results))
		fmt.Fprintln(cmd.OutOrStdout(), "Use 'mangashelf import <ID>' to add one to your shelf.")
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <catalog-id>",
	Short: "Show the full catalog entry for a manga",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid catalog id %q", args[0])
		}

		raw, err := newAPI().CatalogDetail(cmd.Context(), id)
		if err != nil {
			return err
		}

		var pretty bytes.Buffer
		if err := json.Indent(&pretty, raw, "", "  "); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
		return nil
	},
}
