package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"summary-api/app/database"
	"summary-api/app/summarizer"
	"summary-api/app/tasks"
)

func NewHandler(summaryRepo database.SummaryRepository, scheduler tasks.TaskSchedulerInterface,
	httpClient *http.Client, s *summarizer.Summarizer,
	environment, userAgent, version string) *Handler {
	return &Handler{
		summaryRepo: summaryRepo,
		scheduler:   scheduler,
		httpClient:  httpClient,
		summarizer:  s,
		environment: environment,
		userAgent:   userAgent,
		version:     version,
	}
}

func (h *Handler) CreateSummary(c *gin.Context) {
	var payload SummaryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		validationFailed(c, invalidBodyError())
		return
	}

	if payload.URL == nil {
		validationFailed(c, missingFieldError("url"))
		return
	}

	normalized, err := normalizeURL(*payload.URL)
	if err != nil {
		validationFailed(c, invalidURLError("url", err))
		return
	}

	id, err := h.summaryRepo.Insert(normalized)
	if err != nil {
		slog.Error("Database error", "operation", "insert_summary", "url", normalized, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	record, err := h.summaryRepo.GetByID(id)
	if err != nil || record == nil {
		slog.Error("Database error", "operation", "get_summary", "summary_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	task := tasks.NewGenerateSummaryTask(record.ID, record.URL, h.summaryRepo, h.httpClient, h.summarizer, h.userAgent)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		// The record is already persisted; summary generation is best effort
		slog.Warn("Failed to enqueue GenerateSummaryTask", "summary_id", record.ID, "error", err)
	}

	c.JSON(http.StatusCreated, toResponse(record))
}

func (h *Handler) GetSummary(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	record, err := h.summaryRepo.GetByID(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_summary", "summary_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Summary not found"})
		return
	}

	c.JSON(http.StatusOK, toResponse(record))
}

func (h *Handler) ListSummaries(c *gin.Context) {
	records, err := h.summaryRepo.GetAll()
	if err != nil {
		slog.Error("Database error", "operation", "list_summaries", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	responses := make([]SummaryResponse, 0, len(records))
	for i := range records {
		responses = append(responses, toResponse(&records[i]))
	}

	c.JSON(http.StatusOK, responses)
}

func (h *Handler) UpdateSummary(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var payload SummaryUpdatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		validationFailed(c, invalidBodyError())
		return
	}

	if payload.URL == nil {
		validationFailed(c, missingFieldError("url"))
		return
	}

	normalized, err := normalizeURL(*payload.URL)
	if err != nil {
		validationFailed(c, invalidURLError("url", err))
		return
	}

	record, err := h.summaryRepo.Update(id, normalized, payload.Summary)
	if err != nil {
		slog.Error("Database error", "operation", "update_summary", "summary_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Summary not found"})
		return
	}

	c.JSON(http.StatusOK, toResponse(record))
}

func (h *Handler) DeleteSummary(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	deleted, err := h.summaryRepo.Delete(id)
	if err != nil {
		slog.Error("Database error", "operation", "delete_summary", "summary_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Summary not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ping":        "pong!",
		"environment": h.environment,
	})
}

func (h *Handler) Root(c *gin.Context) {
	info := gin.H{
		"service":     "Summary API",
		"version":     h.version,
		"description": "CRUD service for text summary records with background summarization",
		"endpoints": map[string]string{
			"create":  "POST /summaries/",
			"list":    "GET /summaries/",
			"read":    "GET /summaries/<id>/",
			"update":  "PUT /summaries/<id>/",
			"delete":  "DELETE /summaries/<id>/",
			"ping":    "GET /ping",
			"metrics": "GET /metrics",
		},
	}

	if count, err := h.summaryRepo.GetCount(); err == nil {
		info["summaries"] = count
	}

	c.JSON(http.StatusOK, info)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		validationFailed(c, invalidIDError())
		return 0, false
	}
	return id, true
}

func validationFailed(c *gin.Context, errs ...FieldError) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": errs})
}

func toResponse(s *database.Summary) SummaryResponse {
	return SummaryResponse{
		ID:      s.ID,
		URL:     s.URL,
		Summary: s.Summary,
	}
}
