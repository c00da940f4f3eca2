package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"summary-api/app/database"
	"summary-api/app/summarizer"
	"summary-api/app/tasks"
)

var _ database.SummaryRepository = (*fakeSummaryRepo)(nil)

// fakeSummaryRepo is an in-memory stand-in for the Postgres repository
type fakeSummaryRepo struct {
	nextID  int64
	records map[int64]database.Summary
}

func newFakeSummaryRepo() *fakeSummaryRepo {
	return &fakeSummaryRepo{records: make(map[int64]database.Summary)}
}

func (f *fakeSummaryRepo) Insert(url string) (int64, error) {
	f.nextID++
	f.records[f.nextID] = database.Summary{
		ID:        f.nextID,
		URL:       url,
		CreatedAt: time.Now(),
	}
	return f.nextID, nil
}

func (f *fakeSummaryRepo) GetByID(id int64) (*database.Summary, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (f *fakeSummaryRepo) GetAll() ([]database.Summary, error) {
	var all []database.Summary
	for _, record := range f.records {
		all = append(all, record)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (f *fakeSummaryRepo) Update(id int64, url string, summary *string) (*database.Summary, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, nil
	}
	record.URL = url
	if summary != nil {
		record.Summary = summary
	}
	f.records[id] = record
	return &record, nil
}

func (f *fakeSummaryRepo) Delete(id int64) (bool, error) {
	_, ok := f.records[id]
	delete(f.records, id)
	return ok, nil
}

func (f *fakeSummaryRepo) SetSummary(id int64, text string) error {
	record, ok := f.records[id]
	if !ok {
		return fmt.Errorf("no record with id %d", id)
	}
	record.Summary = &text
	f.records[id] = record
	return nil
}

func (f *fakeSummaryRepo) GetPending(limit int) ([]database.Summary, error) {
	var pending []database.Summary
	for _, record := range f.records {
		if record.Summary == nil {
			pending = append(pending, record)
		}
	}
	return pending, nil
}

func (f *fakeSummaryRepo) GetCount() (int, error) {
	return len(f.records), nil
}

type stubScheduler struct{}

func (stubScheduler) Start() {}
func (stubScheduler) Stop()  {}

func (stubScheduler) EnqueueTask(task tasks.TaskInterface) error { return nil }

func newTestServer() (*gin.Engine, *fakeSummaryRepo) {
	repo := newFakeSummaryRepo()
	handler := NewHandler(repo, stubScheduler{}, &http.Client{}, summarizer.NewSummarizer(),
		"test", "Test Agent", "test-version")
	return NewServer(handler), repo
}

func doRequest(server *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestCreateSummary(t *testing.T) {
	server, _ := newTestServer()

	w := doRequest(server, "POST", "/summaries/", `{"url":"https://example.com"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["url"] != "https://example.com/" {
		t.Errorf("Expected canonical URL 'https://example.com/', got %v", body["url"])
	}
	if body["summary"] != nil {
		t.Errorf("Expected null summary on create, got %v", body["summary"])
	}
}

func TestCreateSummaryMissingURL(t *testing.T) {
	server, repo := newTestServer()

	w := doRequest(server, "POST", "/summaries/", `{}`)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if _, ok := body["detail"].([]interface{}); !ok {
		t.Errorf("Expected detail field-error list, got %v", body["detail"])
	}

	if count, _ := repo.GetCount(); count != 0 {
		t.Errorf("Expected no record persisted, got %d", count)
	}
}

func TestCreateSummaryInvalidURL(t *testing.T) {
	server, repo := newTestServer()

	w := doRequest(server, "POST", "/summaries/", `{"url":"not-a-valid-url"}`)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", w.Code)
	}

	if count, _ := repo.GetCount(); count != 0 {
		t.Errorf("Expected no record persisted, got %d", count)
	}
}

func TestCreateSummaryMalformedJSON(t *testing.T) {
	server, _ := newTestServer()

	w := doRequest(server, "POST", "/summaries/", `{"url":`)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", w.Code)
	}
}

func TestReadSummary(t *testing.T) {
	server, _ := newTestServer()

	w := doRequest(server, "POST", "/summaries/", `{"url":"https://example.com"}`)
	created := decodeBody(t, w)
	id := int64(created["id"].(float64))

	w = doRequest(server, "GET", fmt.Sprintf("/summaries/%d/", id), "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if int64(body["id"].(float64)) != id {
		t.Errorf("Expected id %d, got %v", id, body["id"])
	}
	if body["url"] != "https://example.com/" {
		t.Errorf("Expected canonical URL, got %v", body["url"])
	}
}

func TestReadSummaryNotFound(t *testing.T) {
	server, _ := newTestServer()

	w := doRequest(server, "GET", "/summaries/99999/", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["detail"] != "Summary not found" {
		t.Errorf("Expected detail 'Summary not found', got %v", body["detail"])
	}
}

func TestReadSummaryInvalidID(t *testing.T) {
	server, _ := newTestServer()

	w := doRequest(server, "GET", "/summaries/abc/", "")

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", w.Code)
	}
}

func TestReadAllSummaries(t *testing.T) {
	server, _ := newTestServer()

	doRequest(server, "POST", "/summaries/", `{"url":"https://example1.com"}`)
	doRequest(server, "POST", "/summaries/", `{"url":"https://example2.com"}`)

	w := doRequest(server, "GET", "/summaries/", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var records []SummaryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("Failed to decode list response: %v", err)
	}
	if len(records) < 2 {
		t.Errorf("Expected at least 2 records, got %d", len(records))
	}
}

func TestReadAllSummariesEmpty(t *testing.T) {
	server, _ := newTestServer()

	w := doRequest(server, "GET", "/summaries/", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	// Empty list must serialize as [], not null
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("Expected empty JSON array, got %s", w.Body.String())
	}
}

func TestUpdateSummary(t *testing.T) {
	server, _ := newTestServer()

	w := doRequest(server, "POST", "/summaries/", `{"url":"https://example.com"}`)
	created := decodeBody(t, w)
	id := int64(created["id"].(float64))

	w = doRequest(server, "PUT", fmt.Sprintf("/summaries/%d/", id),
		`{"url":"https://updated.com","summary":"Updated summary text"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["url"] != "https://updated.com/" {
		t.Errorf("Expected updated canonical URL, got %v", body["url"])
	}
	if body["summary"] != "Updated summary text" {
		t.Errorf("Expected updated summary text, got %v", body["summary"])
	}
}

func TestUpdateSummaryOmittedTextKept(t *testing.T) {
	server, repo := newTestServer()

	w := doRequest(server, "POST", "/summaries/", `{"url":"https://example.com"}`)
	created := decodeBody(t, w)
	id := int64(created["id"].(float64))

	if err := repo.SetSummary(id, "original text"); err != nil {
		t.Fatalf("Failed to seed summary text: %v", err)
	}

	// Update without a summary field must leave the stored text unchanged
	w = doRequest(server, "PUT", fmt.Sprintf("/summaries/%d/", id), `{"url":"https://other.com"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["summary"] != "original text" {
		t.Errorf("Expected summary text preserved, got %v", body["summary"])
	}
	if body["url"] != "https://other.com/" {
		t.Errorf("Expected updated URL, got %v", body["url"])
	}
}

func TestUpdateSummaryNotFound(t *testing.T) {
	server, _ := newTestServer()

	w := doRequest(server, "PUT", "/summaries/99999/", `{"url":"https://example.com","summary":"test"}`)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["detail"] != "Summary not found" {
		t.Errorf("Expected detail 'Summary not found', got %v", body["detail"])
	}
}

func TestUpdateSummaryInvalidURL(t *testing.T) {
	server, _ := newTestServer()

	w := doRequest(server, "POST", "/summaries/", `{"url":"https://example.com"}`)
	created := decodeBody(t, w)
	id := int64(created["id"].(float64))

	w = doRequest(server, "PUT", fmt.Sprintf("/summaries/%d/", id), `{"url":"invalid"}`)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", w.Code)
	}
}

func TestDeleteSummary(t *testing.T) {
	server, _ := newTestServer()

	w := doRequest(server, "POST", "/summaries/", `{"url":"https://example.com"}`)
	created := decodeBody(t, w)
	id := int64(created["id"].(float64))

	w = doRequest(server, "DELETE", fmt.Sprintf("/summaries/%d/", id), "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if int64(body["id"].(float64)) != id {
		t.Errorf("Expected id %d, got %v", id, body["id"])
	}
	if body["deleted"] != true {
		t.Errorf("Expected deleted true, got %v", body["deleted"])
	}

	// Deletion is immediate and permanent
	w = doRequest(server, "GET", fmt.Sprintf("/summaries/%d/", id), "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after delete, got %d", w.Code)
	}
}

func TestDeleteSummaryNotFound(t *testing.T) {
	server, _ := newTestServer()

	w := doRequest(server, "DELETE", "/summaries/99999/", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["detail"] != "Summary not found" {
		t.Errorf("Expected detail 'Summary not found', got %v", body["detail"])
	}
}

func TestPing(t *testing.T) {
	server, _ := newTestServer()

	w := doRequest(server, "GET", "/ping", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["ping"] != "pong!" {
		t.Errorf("Expected ping 'pong!', got %v", body["ping"])
	}
	if body["environment"] != "test" {
		t.Errorf("Expected environment 'test', got %v", body["environment"])
	}
}

func TestRoot(t *testing.T) {
	server, _ := newTestServer()

	doRequest(server, "POST", "/summaries/", `{"url":"https://example.com"}`)

	w := doRequest(server, "GET", "/", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["service"] != "Summary API" {
		t.Errorf("Expected service name, got %v", body["service"])
	}
	if body["summaries"] != float64(1) {
		t.Errorf("Expected summaries count 1, got %v", body["summaries"])
	}
}
