package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mangashelf/internal/logging"
	synchub "mangashelf/internal/sync"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7070", "TCP sync server address")
	pretty := flag.Bool("pretty", true, "pretty print JSON events")
	flag.Parse()

	logger, _, err := logging.New(logging.Options{Level: "info", Format: "text"})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		logger.Info("connecting", "addr", *addr)
		err := synchub.Subscribe(ctx, *addr, func(ev synchub.RecordEvent) { printEvent(ev, *pretty) })
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Warn("disconnected", "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second): // auto reconnect
		}
	}
}

func printEvent(ev synchub.RecordEvent, pretty bool) {
	var (
		b   []byte
		err error
	)
	if pretty {
		b, err = json.MarshalIndent(ev, "", "  ")
	} else {
		b, err = json.Marshal(ev)
	}
	if err != nil {
		return
	}
	fmt.Println(string(b))
}
