package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

var ErrScreeningFailed = errors.New("screening did not succeed")

type screenOptions struct {
	jobDescription string
	resumes        []string
	apiURL         string
	timeout        time.Duration
	asJSON         bool
}

// NewScreenCommand runs one submission through the same page state machine the
// web front-end uses and prints the results panel.
func NewScreenCommand(cfg *config.Config) *cobra.Command {
	opts := &screenOptions{}

	cmd := &cobra.Command{
		Use:   "screen --jd JOB.pdf --resume A.pdf [--resume B.pdf ...]",
		Short: "Screen resumes against a job description",
		Long: `Send one job description and a set of resumes to the screening service and
print which resumes were classified relevant or irrelevant.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.resumes = append(opts.resumes, args...)
			return runScreen(cmd.Context(), cmd.OutOrStdout(), cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.jobDescription, "jd", "", "job description PDF")
	cmd.Flags().StringArrayVar(&opts.resumes, "resume", nil, "resume PDF (repeatable)")
	cmd.Flags().StringVar(&opts.apiURL, "api-url", cfg.Screening.BaseURL, "base address of the screening service")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", cfg.Screening.Timeout, "request timeout")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the results as JSON")

	return cmd
}

func runScreen(ctx context.Context, out io.Writer, cfg *config.Config, opts *screenOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	inspector := services.NewPDFInspector()
	page := services.NewScreeningPage(cfg.Screening.ResumeCapacity)

	if opts.jobDescription != "" {
		handle, err := openHandle(opts.jobDescription, inspector)
		if err != nil {
			return err
		}
		page.AddFiles(models.SlotJobDescription, []models.FileHandle{handle})
	}

	batch := make([]models.FileHandle, 0, len(opts.resumes))
	for _, path := range opts.resumes {
		handle, err := openHandle(path, inspector)
		if err != nil {
			return err
		}
		batch = append(batch, handle)
	}
	page.AddFiles(models.SlotResumes, batch)

	if kept := len(page.Files(models.SlotResumes)); kept < len(batch) {
		log.Warn().
			Int("given", len(batch)).
			Int("kept", kept).
			Msg("⚠️  Resume limit reached, extra files were ignored")
	}

	dispatch, err := page.Submit()
	if err != nil {
		printNotices(out, page.Snapshot().Notices)
		return err
	}

	client := services.NewScreeningClient(strings.TrimRight(opts.apiURL, "/")+"/api/screen_resumes", opts.timeout)
	result, screenErr := client.Screen(ctx, dispatch.Request)
	page.Resolve(dispatch.Generation, result, screenErr)

	snap := page.Snapshot()
	printNotices(out, snap.Notices)

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap.Results); err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
	} else if err := snap.Results.WriteText(out); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	if snap.State != models.StateSucceeded {
		return ErrScreeningFailed
	}
	return nil
}

func openHandle(path string, inspector services.PDFInspector) (models.FileHandle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.FileHandle{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if info.IsDir() {
		return models.FileHandle{}, fmt.Errorf("%s is a directory", path)
	}

	handle := models.FileHandle{
		Name: filepath.Base(path),
		Size: info.Size(),
		Path: path,
	}
	if pdfInfo, err := inspector.Inspect(path); err == nil {
		handle.PageCount = pdfInfo.PageCount
	}

	return handle, nil
}

func printNotices(out io.Writer, notices []models.Notice) {
	for _, n := range notices {
		fmt.Fprintf(out, "%s: %s\n", n.Title, n.Message)
	}
}
