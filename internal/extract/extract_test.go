package extract

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingExtractor struct {
	called string
}

func (r *recordingExtractor) Extract(_ context.Context, name string, _ io.Reader) (string, error) {
	r.called = name
	return "pdf text", nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk error") }

func TestPlainExtract(t *testing.T) {
	text, err := Plain{}.Extract(context.Background(), "cv.txt", strings.NewReader("Go developer\n"))
	require.NoError(t, err)
	require.Equal(t, "Go developer\n", text)

	text, err = Plain{}.Extract(context.Background(), "cv.txt", strings.NewReader("bad \xff byte"))
	require.NoError(t, err)
	require.Equal(t, "bad � byte", text)

	_, err = Plain{}.Extract(context.Background(), "cv.txt", failingReader{})
	require.ErrorIs(t, err, ErrExtraction)
}

func TestRouterDispatch(t *testing.T) {
	pdf := &recordingExtractor{}
	router := NewRouter(pdf)

	text, err := router.Extract(context.Background(), "Resume.PDF", strings.NewReader("%PDF"))
	require.NoError(t, err)
	require.Equal(t, "pdf text", text)
	require.Equal(t, "Resume.PDF", pdf.called)

	text, err = router.Extract(context.Background(), "notes.md", strings.NewReader("# Skills"))
	require.NoError(t, err)
	require.Equal(t, "# Skills", text)

	_, err = router.Extract(context.Background(), "photo.png", strings.NewReader(""))
	require.ErrorIs(t, err, ErrExtraction)
}
