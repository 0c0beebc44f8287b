package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/afero"
	"github.com/spigell/resume-rag/internal/extract"
	"github.com/spigell/resume-rag/internal/logger"
	"github.com/spigell/resume-rag/internal/rag"
	"github.com/spigell/resume-rag/internal/uploads"
	"go.uber.org/zap"
)

const (
	PromptAnalyzeFile = "Analyze a job description file"
	PromptAnalyzeText = "Analyze a job description typed in"
	PromptAddResume   = "Add a resume"
	PromptStats       = "Show index stats"
	PromptExit        = "Exit"
)

var errExit = errors.New("exit requested")

var menu = promptui.Select{
	Label: "What next?",
	Items: []string{PromptAnalyzeFile, PromptAnalyzeText, PromptAddResume, PromptStats, PromptExit},
}

type session struct {
	pipeline  *rag.Pipeline
	store     *uploads.Store
	extractor extract.Extractor
	fs        afero.Fs
	logger    *zap.Logger
	out       io.Writer
}

func (s *session) output() io.Writer {
	if s.out == nil {
		return os.Stdout
	}
	return s.out
}

// addResumeFile stores the file, extracts its text and indexes it. It returns
// the upload id.
func (s *session) addResumeFile(ctx context.Context, path string) (string, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return "", fmt.Errorf("read resume %s: %w", path, err)
	}

	id, err := s.store.Save(ctx, filepath.Ext(path), data)
	if err != nil {
		return "", err
	}

	text, err := s.extractor.Extract(ctx, path, bytes.NewReader(data))
	if err != nil {
		return id, err
	}

	if strings.TrimSpace(text) == "" {
		s.logger.Warn("no text extracted from resume",
			zap.String("path", path),
			zap.String(logger.FieldUploadID, id),
		)
	}

	added, err := s.pipeline.AddResume(ctx, id, text)
	if err != nil {
		return id, err
	}

	s.logger.Info("resume uploaded",
		zap.String("path", path),
		zap.String(logger.FieldUploadID, id),
		zap.Int("chunks", added),
	)

	return id, nil
}

// readJobFile extracts the text of a job description document.
func (s *session) readJobFile(ctx context.Context, path string) (string, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return "", fmt.Errorf("read job description %s: %w", path, err)
	}

	text, err := s.extractor.Extract(ctx, path, bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	s.logger.Debug("job description extracted", zap.String("path", path), zap.Int("text_length", len(text)))

	return strings.TrimSpace(text), nil
}

func (s *session) analyzeJob(ctx context.Context, jobDescription string) error {
	feedback, err := s.pipeline.Analyze(ctx, jobDescription)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(s.output(), "%s\n", feedback)
	return err
}

func (s *session) printStats() error {
	stats := s.pipeline.Stats()

	w := s.output()
	if _, err := fmt.Fprintf(w, "Indexed chunks: %d\n", stats.Chunks); err != nil {
		return err
	}

	ids := make([]string, 0, len(stats.Uploads))
	for id := range stats.Uploads {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if _, err := fmt.Fprintf(w, "- %s: %d\n", id, stats.Uploads[id]); err != nil {
			return err
		}
	}
	return nil
}

// interact runs the menu until the user exits or interrupts it.
func (s *session) interact(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return errExit
		}

		_, action, err := menu.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return errExit
			}
			return err
		}

		if err := s.handleAction(ctx, action); err != nil {
			if errors.Is(err, errExit) {
				return err
			}
			// A failed action is reported and the menu is shown again.
			s.logger.Error("action failed", zap.String("action", action), zap.Error(err))
		}
	}
}

func (s *session) handleAction(ctx context.Context, action string) error {
	switch action {
	case PromptAnalyzeFile:
		path, err := askPath("Path to the job description")
		if err != nil {
			return err
		}
		job, err := s.readJobFile(ctx, path)
		if err != nil {
			return err
		}
		return s.analyzeJob(ctx, job)
	case PromptAnalyzeText:
		text, err := (&promptui.Prompt{Label: "Job description"}).Run()
		if err != nil {
			return err
		}
		return s.analyzeJob(ctx, text)
	case PromptAddResume:
		path, err := askPath("Path to the resume")
		if err != nil {
			return err
		}
		_, err = s.addResumeFile(ctx, path)
		return err
	case PromptStats:
		return s.printStats()
	case PromptExit:
		s.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func askPath(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("path is required")
			}
			return nil
		},
	}

	path, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(path), nil
}
