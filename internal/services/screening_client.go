package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"alfredoptarigan/resume-screener/internal/models"
)

const maxResponseBytes = 4 << 20

type ScreeningClient interface {
	Screen(ctx context.Context, req models.ScreeningRequest) (*models.ScreeningResult, error)
}

type screeningClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewScreeningClient talks to the scoring service at endpoint
// (e.g. http://localhost:5000/api/screen_resumes).
func NewScreeningClient(endpoint string, timeout time.Duration) ScreeningClient {
	return &screeningClient{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Screen implements ScreeningClient. Every failure is wrapped in ErrRequestFailed.
func (c *screeningClient) Screen(ctx context.Context, req models.ScreeningRequest) (*models.ScreeningResult, error) {
	body, contentType, err := buildScreeningForm(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrRequestFailed, err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	log.Info().
		Str("endpoint", c.endpoint).
		Str("jd", req.JobDescription.Name).
		Int("resumes", len(req.Resumes)).
		Msg("📤 Sending screening request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d: %s", ErrRequestFailed, resp.StatusCode, truncate(string(raw), 200))
	}

	result, err := decodeScreeningResult(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	log.Info().
		Int("relevant", len(result.Relevant)).
		Int("irrelevant", len(result.Irrelevant)).
		Msg("📥 Screening response received")

	return result, nil
}

// buildScreeningForm writes jd and every resume under their original file names.
func buildScreeningForm(req models.ScreeningRequest) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writeFormFile(writer, "jd", req.JobDescription); err != nil {
		return nil, "", err
	}
	for _, resume := range req.Resumes {
		if err := writeFormFile(writer, "resumes", resume); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}

func writeFormFile(writer *multipart.Writer, field string, file models.FileHandle) error {
	src, err := os.Open(file.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", file.Name, err)
	}
	defer src.Close()

	part, err := writer.CreateFormFile(field, file.Name)
	if err != nil {
		return fmt.Errorf("failed to create form part for %s: %w", file.Name, err)
	}

	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("failed to copy %s: %w", file.Name, err)
	}

	return nil
}

type screeningResponse struct {
	Relevant   *[]string `json:"relevant_resumes"`
	Irrelevant *[]string `json:"irrelevant_resumes"`
}

// decodeScreeningResult accepts only an object with both string arrays and nothing else.
func decodeScreeningResult(raw []byte) (*models.ScreeningResult, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var payload screeningResponse
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("malformed response body: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("malformed response body: trailing data")
	}

	if payload.Relevant == nil || payload.Irrelevant == nil {
		return nil, fmt.Errorf("malformed response body: relevant_resumes and irrelevant_resumes are required")
	}

	return &models.ScreeningResult{
		Relevant:   *payload.Relevant,
		Irrelevant: *payload.Irrelevant,
	}, nil
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
