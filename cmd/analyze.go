package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/resume-rag/internal/logger"
	"go.uber.org/zap"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Index resumes and assess them against a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringSliceP("resume", "r", nil, "resume file to index (pdf, txt or md); can be repeated")
	analyzeCmd.Flags().StringP("job", "f", "", "file with the job description")
	analyzeCmd.Flags().StringP("job-text", "t", "", "job description text")
	analyzeCmd.Flags().BoolP("interactive", "i", false, "open an interactive session after indexing")
}

// analyze is the main command for the cli.
func analyze(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-rag", zap.String("version", version))
	logger.Debug("starting with config",
		zap.String("embedding_provider", config.Embedding.Provider),
		zap.Bool("ai_enabled", config.AI.Enabled),
		zap.String("ai_provider", config.AI.Provider),
		zap.Duration("ai_timeout", config.AI.Timeout),
		zap.String("uploads_backend", config.Uploads.Backend),
		zap.Int("chunk_words", config.Chunking.MaxWords),
		zap.Int("top_k", config.Retrieval.TopK),
	)

	fs := afero.NewOsFs()

	s, err := newSession(ctx, config, fs, logger)
	if err != nil {
		logger.Fatal("preparing the pipeline", zap.Error(err))
	}

	resumes, _ := cmd.Flags().GetStringSlice("resume")
	for _, path := range resumes {
		if _, err := s.addResumeFile(ctx, path); err != nil {
			logger.Fatal("adding a resume", zap.String("path", path), zap.Error(err))
		}
	}

	job, err := s.jobDescription(ctx, cmd)
	if err != nil {
		logger.Fatal("reading the job description", zap.Error(err))
	}

	interactive, _ := cmd.Flags().GetBool("interactive")

	if job != "" {
		if err := s.analyzeJob(ctx, job); err != nil {
			logger.Fatal("analyzing the job description", zap.Error(err))
		}
		if !interactive {
			return
		}
	}

	if err := s.interact(ctx); err != nil && !errors.Is(err, errExit) {
		logger.Fatal("exiting", zap.Error(err))
	}
}

func newLogger() (*zap.Logger, error) {
	return logger.New(viper.GetBool("json"), viper.GetBool("debug"))
}

// jobDescription returns the job text from --job-text, or the text extracted
// from the --job file.
func (s *session) jobDescription(ctx context.Context, cmd *cobra.Command) (string, error) {
	text, _ := cmd.Flags().GetString("job-text")
	file, _ := cmd.Flags().GetString("job")

	if text != "" && file != "" {
		return "", errors.New("use either --job or --job-text, not both")
	}

	if file != "" {
		return s.readJobFile(ctx, file)
	}

	return strings.TrimSpace(text), nil
}
