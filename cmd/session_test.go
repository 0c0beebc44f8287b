package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/resume-rag/internal/ai"
	"github.com/spigell/resume-rag/internal/embedding"
	"github.com/spigell/resume-rag/internal/extract"
	"github.com/spigell/resume-rag/internal/rag"
	"github.com/spigell/resume-rag/internal/scoring"
	"github.com/spigell/resume-rag/internal/uploads"
	"github.com/spigell/resume-rag/internal/vectorindex"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSession(t *testing.T, fs afero.Fs) (*session, *bytes.Buffer) {
	t.Helper()

	embedder := embedding.NewPooled(embedding.NewHashing(64), 64, embedding.DefaultMaxTokens, nil)
	composer := ai.NewComposer(nil, scoring.Assess, nil)
	pipeline := rag.New(vectorindex.New(64), embedder, composer, nil, rag.WithTopK(5))

	backend, err := uploads.NewDiskBackend(fs, "uploads")
	require.NoError(t, err)

	var out bytes.Buffer
	return &session{
		pipeline:  pipeline,
		store:     uploads.NewStore(backend, 0, nil),
		extractor: extract.NewRouter(nil),
		fs:        fs,
		logger:    zap.NewNop(),
		out:       &out,
	}, &out
}

func TestSessionAddResumeAndAnalyze(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "cv.txt", []byte("python data pipelines and sql warehouse tuning"), 0o644))

	s, out := newTestSession(t, fs)

	id, err := s.addResumeFile(context.Background(), "cv.txt")
	require.NoError(t, err)

	stored, err := afero.ReadFile(fs, "uploads/"+id+".txt")
	require.NoError(t, err)
	require.Contains(t, string(stored), "python")

	require.NoError(t, s.analyzeJob(context.Background(), "python sql leadership"))
	require.Equal(t, "Match Score: 67/100\n\nStrengths:\n- python\n- sql\n\nWeaknesses:\n- leadership\n", out.String())

	out.Reset()
	require.NoError(t, s.printStats())
	require.Equal(t, "Indexed chunks: 1\n- "+id+": 1\n", out.String())
}

func TestSessionAnalyzeWithoutResumes(t *testing.T) {
	s, _ := newTestSession(t, afero.NewMemMapFs())

	err := s.analyzeJob(context.Background(), "go developer")
	require.ErrorIs(t, err, rag.ErrNoResumes)
}

func TestSessionRejectsUnsupportedFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "cv.docx", []byte("binary"), 0o644))

	s, _ := newTestSession(t, fs)

	_, err := s.addResumeFile(context.Background(), "cv.docx")
	require.ErrorIs(t, err, extract.ErrExtraction)

	_, err = s.addResumeFile(context.Background(), "missing.txt")
	require.Error(t, err)
}

func TestHandleActionExit(t *testing.T) {
	s, _ := newTestSession(t, afero.NewMemMapFs())

	require.True(t, errors.Is(s.handleAction(context.Background(), PromptExit), errExit))
	require.Error(t, s.handleAction(context.Background(), "unknown"))
}

type stubPDF struct {
	text  string
	names []string
}

func (p *stubPDF) Extract(_ context.Context, name string, _ io.Reader) (string, error) {
	p.names = append(p.names, name)
	return p.text, nil
}

func TestJobDescription(t *testing.T) {
	newCmd := func(args ...string) *cobra.Command {
		cmd := &cobra.Command{}
		cmd.Flags().StringP("job", "f", "", "")
		cmd.Flags().StringP("job-text", "t", "", "")
		require.NoError(t, cmd.Flags().Parse(args))
		return cmd
	}

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "jd.txt", []byte("  Go engineer\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "jd.pdf", []byte("%PDF-1.4\nstream\x00\xffendstream"), 0o644))

	s, _ := newTestSession(t, fs)
	pdf := &stubPDF{text: "  Senior Go engineer with Kubernetes\n"}
	s.extractor = extract.NewRouter(pdf)

	ctx := context.Background()

	text, err := s.jobDescription(ctx, newCmd("--job", "jd.txt"))
	require.NoError(t, err)
	require.Equal(t, "Go engineer", text)

	text, err = s.jobDescription(ctx, newCmd("--job", "jd.pdf"))
	require.NoError(t, err)
	require.Equal(t, "Senior Go engineer with Kubernetes", text)
	require.Equal(t, []string{"jd.pdf"}, pdf.names)

	text, err = s.jobDescription(ctx, newCmd("--job-text", "Rust engineer"))
	require.NoError(t, err)
	require.Equal(t, "Rust engineer", text)

	_, err = s.jobDescription(ctx, newCmd("--job", "jd.txt", "--job-text", "x"))
	require.Error(t, err)

	_, err = s.jobDescription(ctx, newCmd("--job", "jd.docx"))
	require.Error(t, err)
}

func TestAnalyzeJobFromPDF(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "cv.txt", []byte("python data pipelines and sql warehouse tuning"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "jd.pdf", []byte("%PDF-1.4 binary"), 0o644))

	s, out := newTestSession(t, fs)
	s.extractor = extract.NewRouter(&stubPDF{text: "python sql leadership"})

	_, err := s.addResumeFile(context.Background(), "cv.txt")
	require.NoError(t, err)

	job, err := s.readJobFile(context.Background(), "jd.pdf")
	require.NoError(t, err)
	require.NoError(t, s.analyzeJob(context.Background(), job))
	require.Equal(t, "Match Score: 67/100\n\nStrengths:\n- python\n- sql\n\nWeaknesses:\n- leadership\n", out.String())
}

func TestSessionAnalyzeBlankJob(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "cv.txt", []byte("go developer"), 0o644))

	s, _ := newTestSession(t, fs)
	_, err := s.addResumeFile(context.Background(), "cv.txt")
	require.NoError(t, err)

	require.ErrorIs(t, s.analyzeJob(context.Background(), "   "), rag.ErrEmptyJobDescription)
}

func TestDecodeConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	config, err := decodeConfig(v)
	require.NoError(t, err)

	require.Equal(t, 300, config.Chunking.MaxWords)
	require.Equal(t, 3, config.Retrieval.TopK)
	require.Equal(t, "local", config.Embedding.Provider)
	require.Equal(t, 768, config.Embedding.Dimension)
	require.Equal(t, 60*time.Second, config.AI.Timeout)
	require.Equal(t, "gemini-2.5-flash", config.AI.Gemini.Model)
	require.Equal(t, int64(10<<20), config.Uploads.MaxFileSize)
	require.Equal(t, "resumes", config.Uploads.Minio.Bucket)
}

func TestNewEmbedderLocal(t *testing.T) {
	config, err := decodeConfig(func() *viper.Viper { v := viper.New(); setDefaults(v); return v }())
	require.NoError(t, err)
	config.Embedding.Dimension = 32

	embedder, err := newEmbedder(context.Background(), config.Embedding, &providers{config: config}, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 32, embedder.Dimension())

	config.Embedding.Provider = "unknown"
	_, err = newEmbedder(context.Background(), config.Embedding, &providers{config: config}, zap.NewNop())
	require.Error(t, err)
}

func TestNewGeneratorDisabled(t *testing.T) {
	generator, err := newGenerator(context.Background(), &AIConfig{Enabled: false}, &providers{}, zap.NewNop())
	require.NoError(t, err)
	require.Nil(t, generator)
}

func TestPrintVersion(t *testing.T) {
	var out bytes.Buffer
	printVersion(&out)
	require.Contains(t, out.String(), "resume-rag version: unknown\n")
}
