package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPreview(t *testing.T) {
	cases := map[string]struct {
		in    string
		limit int
		want  string
	}{
		"disabled":        {in: "anything", limit: 0, want: ""},
		"fits":            {in: "score 80", limit: 20, want: "score 80"},
		"cut":             {in: "strengths: go", limit: 9, want: "strengths..."},
		"multiline":       {in: "{\n  \"score\":\t80\n}", limit: 50, want: "{ \"score\": 80 }"},
		"counts runes":    {in: "résumé text", limit: 6, want: "résumé..."},
		"blank collapses": {in: " \n\t ", limit: 5, want: ""},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.want, Preview(tc.in, tc.limit))
		})
	}
}

func TestSleep(t *testing.T) {
	require.NoError(t, Sleep(context.Background(), time.Millisecond))
	require.NoError(t, Sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	started := time.Now()
	require.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	require.Less(t, time.Since(started), time.Second)
	require.ErrorIs(t, Sleep(ctx, 0), context.Canceled)
}
