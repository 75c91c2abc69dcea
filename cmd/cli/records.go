package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mangashelf/pkg/models"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the manga on your shelf",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newAPI().List(cmd.Context())
		if err != nil {
			return err
		}
		if resp.Total == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Your shelf is empty. Use 'mangashelf search' to find something to read.")
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\nShelf (%d manga)\n\n", resp.Total)
		fmt.Fprintln(cmd.OutOrStdout(), recordTable(resp.Items))
		return nil
	},
}

var addFlags struct {
	name     string
	chapters int
	read     int
	cover    string
}

var addCmd = &cobra.Command{
	Use:   "add <catalog-id>",
	Short: "Add a manga by hand",
	Long:  "Add a manga by hand. Pass --chapters -1 (the default) when the total is unknown.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid catalog id %q", args[0])
		}

		payload := map[string]any{
			"external_id":   id,
			"name":          addFlags.name,
			"chapters_read": addFlags.read,
		}
		if addFlags.chapters >= 0 {
			payload["chapters"] = addFlags.chapters
		}
		if addFlags.cover != "" {
			payload["cover_url"] = addFlags.cover
		}

		m, err := newAPI().Create(cmd.Context(), payload)
		if err != nil {
			return err
		}
		printSaved(cmd, "added", m)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <catalog-id>",
	Short: "Add a manga using its catalog details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid catalog id %q", args[0])
		}

		m, err := newAPI().Import(cmd.Context(), id)
		if err != nil {
			return err
		}
		printSaved(cmd, "imported", m)
		return nil
	},
}

var progressTotal int

var progressCmd = &cobra.Command{
	Use:   "progress <id> <chapters-read>",
	Short: "Record how many chapters you have read",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}
		read, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid chapter count %q", args[1])
		}

		var total *int
		if cmd.Flags().Changed("total") {
			total = &progressTotal
		}

		m, err := newAPI().UpdateProgress(cmd.Context(), id, read, total)
		if err != nil {
			return err
		}
		printSaved(cmd, "updated", m)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Remove a manga from your shelf",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}
		if err := newAPI().Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed #%d\n", id)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addFlags.name, "name", "", "title")
	addCmd.Flags().IntVar(&addFlags.chapters, "chapters", -1, "total chapters")
	addCmd.Flags().IntVar(&addFlags.read, "read", 0, "chapters read")
	addCmd.Flags().StringVar(&addFlags.cover, "cover", "", "cover image URL")
	_ = addCmd.MarkFlagRequired("name")

	progressCmd.Flags().IntVar(&progressTotal, "total", 0, "also set the total chapter count")
}

func printSaved(cmd *cobra.Command, verb string, m *models.MangaRecord) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s (%s)\n", verb, m.ID, m.Name, progressText(*m))
}
