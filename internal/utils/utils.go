// Package utils holds small helpers shared by the model clients.
package utils

import (
	"context"
	"strings"
	"time"
)

// Preview flattens s onto one line and cuts it to limit runes for log output.
func Preview(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	flat := strings.Join(strings.Fields(s), " ")
	if n := len([]rune(flat)); n <= limit {
		return flat
	}
	return string([]rune(flat)[:limit]) + "..."
}

// Sleep pauses for d unless ctx ends first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
