package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"summary-api/app/database"
	"summary-api/app/summarizer"
)

const fetchTimeout = 30 * time.Second

type GenerateSummaryTask struct {
	Task
	SummaryID   int64
	URL         string
	summaryRepo database.SummaryRepository
	httpClient  *http.Client
	summarizer  *summarizer.Summarizer
	userAgent   string
}

func NewGenerateSummaryTask(summaryID int64, url string, summaryRepo database.SummaryRepository,
	httpClient *http.Client, s *summarizer.Summarizer, userAgent string) *GenerateSummaryTask {
	return &GenerateSummaryTask{
		Task:        NewTask(TaskTypeGenerateSummary),
		SummaryID:   summaryID,
		URL:         url,
		summaryRepo: summaryRepo,
		httpClient:  httpClient,
		summarizer:  s,
		userAgent:   userAgent,
	}
}

func (t *GenerateSummaryTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data, err := t.fetchPage(ctx, t.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch page: %w", err)
	}

	text, err := t.summarizer.Run(data, t.URL)
	if err != nil {
		return fmt.Errorf("failed to generate summary: %w", err)
	}

	if err := t.summaryRepo.SetSummary(t.SummaryID, text); err != nil {
		return fmt.Errorf("failed to store summary text: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"summary_id", t.SummaryID,
		"duration", t.GetDuration(),
		"summary_length", len(text))

	return nil
}

func (t *GenerateSummaryTask) fetchPage(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("content type is not HTML: %s", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
