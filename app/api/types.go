package api

import (
	"net/http"

	"summary-api/app/database"
	"summary-api/app/summarizer"
	"summary-api/app/tasks"
)

type Handler struct {
	summaryRepo database.SummaryRepository
	scheduler   tasks.TaskSchedulerInterface
	httpClient  *http.Client
	summarizer  *summarizer.Summarizer
	environment string
	userAgent   string
	version     string
}

// SummaryPayload is the create request body. URL is a pointer so a missing
// field can be told apart from an empty string.
type SummaryPayload struct {
	URL *string `json:"url"`
}

// SummaryUpdatePayload is the update request body. Summary stays nil when
// the field is omitted, which leaves the stored text untouched.
type SummaryUpdatePayload struct {
	URL     *string `json:"url"`
	Summary *string `json:"summary"`
}

type SummaryResponse struct {
	ID      int64   `json:"id"`
	URL     string  `json:"url"`
	Summary *string `json:"summary"`
}
