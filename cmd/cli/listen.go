package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	synchub "mangashelf/internal/sync"
)

var listenAddr string

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Print shelf changes as they happen",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "listening on %s, Ctrl+C to stop\n", listenAddr)
		err := synchub.Subscribe(ctx, listenAddr, func(ev synchub.RecordEvent) {
			fmt.Fprintln(cmd.OutOrStdout(), describeEvent(ev))
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	listenCmd.Flags().StringVar(&listenAddr, "addr", "127.0.0.1:7070", "TCP sync feed address")
}

func describeEvent(ev synchub.RecordEvent) string {
	at := ev.At.Local().Format("15:04:05")
	switch ev.Type {
	case synchub.RecordDeleted:
		return fmt.Sprintf("[%s] removed #%d", at, ev.RecordID)
	case synchub.RecordCreated, synchub.RecordUpdated:
		verb := "added"
		if ev.Type == synchub.RecordUpdated {
			verb = "updated"
		}
		total := "?"
		if ev.ChaptersTotal != nil {
			total = fmt.Sprint(*ev.ChaptersTotal)
		}
		return fmt.Sprintf("[%s] %s #%d %s (%d/%s)", at, verb, ev.RecordID, ev.Name, ev.ChaptersRead, total)
	default:
		return fmt.Sprintf("[%s] %s #%d", at, ev.Type, ev.RecordID)
	}
}
