package sync

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
)

// Subscribe connects to a TCP event feed and calls handle for each record
// event until ctx is cancelled or the server hangs up. Welcome lines and
// anything that is not a record event are skipped.
func Subscribe(ctx context.Context, addr string, handle func(RecordEvent)) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		var ev RecordEvent
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil || ev.RecordID == 0 {
			continue
		}
		handle(ev)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", addr, err)
	}
	return fmt.Errorf("%s closed the connection", addr)
}
