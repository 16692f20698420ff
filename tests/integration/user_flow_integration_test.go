package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/psylab-id/smds27/internal/api"
	"github.com/psylab-id/smds27/internal/middleware"
	"github.com/psylab-id/smds27/internal/models"
	"github.com/psylab-id/smds27/internal/services"
)

type memRecordStore struct {
	records []*models.AssessmentRecord
}

func (s *memRecordStore) AddRecord(rec *models.AssessmentRecord, reportText string) error {
	s.records = append(s.records, rec)
	return nil
}

func (s *memRecordStore) ListRecords() ([]*models.AssessmentRecord, error) {
	return s.records, nil
}

type scriptedGenerator struct{}

func (scriptedGenerator) Generate(ctx context.Context, req *services.ReportRequest) (*services.NarrativeResult, error) {
	return &services.NarrativeResult{
		Text: "Your screening suggests elevated use. See [a review](https://journal.example/review).",
		Candidates: []models.Citation{
			{Title: "Review", URL: "https://journal.example/review"},
			{Title: "Redirect", URL: "https://vertexaisearch.cloud.google.com/grounding-api-redirect/abc"},
		},
	}, nil
}

type failingAppender struct{}

func (failingAppender) Append(ctx context.Context, rec *models.AssessmentRecord) error {
	return errors.New("sheet unavailable")
}

func newTestServer(t *testing.T, records services.RecordStore) *httptest.Server {
	t.Helper()
	scorer, err := services.NewScorer(services.DefaultSeverityBands())
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}
	svc := services.NewSessionService(services.SessionServiceConfig{
		Sessions:  api.NewMemorySessionStore(),
		Records:   records,
		Generator: scriptedGenerator{},
		Appender:  failingAppender{},
		Scorer:    scorer,
		Post:      services.NewPostProcessor(nil),
		Builder:   services.DefaultBuilderOptions(),
	})
	hash, err := services.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	auth := services.NewAuthService(services.AdminCredentials{
		Email:        "admin@example.com",
		PasswordHash: hash,
	}, middleware.SignToken)

	mux := http.NewServeMux()
	api.NewRouter(svc, auth, records).Register(mux)
	srv := httptest.NewServer(middleware.LocaleMiddleware(middleware.WithAuth(mux)))
	t.Cleanup(srv.Close)
	return srv
}

func TestUserJourney(t *testing.T) {
	records := &memRecordStore{}
	srv := newTestServer(t, records)
	client := &http.Client{Timeout: 5 * time.Second}

	var itemsResp struct {
		Items []struct {
			ID        int    `json:"id"`
			Dimension string `json:"dimension"`
			Stem      string `json:"stem"`
		} `json:"items"`
		LikertMax int `json:"likert_max"`
	}
	doGet(t, client, srv.URL+"/api/items", "", &itemsResp)
	if len(itemsResp.Items) != 27 || itemsResp.LikertMax != 4 {
		t.Fatalf("catalog: %d items, max %d", len(itemsResp.Items), itemsResp.LikertMax)
	}

	var createResp struct {
		SessionID string `json:"session_id"`
		State     string `json:"state"`
	}
	doPost(t, client, srv.URL+"/api/sessions", "", nil, &createResp)
	if createResp.SessionID == "" || createResp.State != "profile" {
		t.Fatalf("create session: %+v", createResp)
	}
	sessURL := srv.URL + "/api/sessions/" + createResp.SessionID

	doPost(t, client, sessURL+"/profile", "", map[string]any{
		"alias":      "Budi",
		"age":        21,
		"gender":     "male",
		"occupation": "student",
	}, nil)

	answers := make([]map[string]int, 0, 27)
	for _, it := range itemsResp.Items {
		answers = append(answers, map[string]int{"item_id": it.ID, "value": 3})
	}
	var respResp struct {
		State      string `json:"state"`
		TotalScore int    `json:"total_score"`
		Severity   struct {
			Label string `json:"label"`
		} `json:"severity"`
	}
	doPost(t, client, sessURL+"/responses", "", map[string]any{"answers": answers}, &respResp)
	if respResp.TotalScore != 81 || respResp.Severity.Label != "High" {
		t.Fatalf("scoring: %+v", respResp)
	}

	var reportResp struct {
		State          string `json:"state"`
		PersistWarning bool   `json:"persist_warning"`
		Report         struct {
			Body        string            `json:"body"`
			Citations   []models.Citation `json:"citations"`
			Disclaimer  string            `json:"disclaimer"`
			Unavailable bool              `json:"unavailable"`
		} `json:"report"`
	}
	doPost(t, client, sessURL+"/report", "", nil, &reportResp)
	if reportResp.State != "done" {
		t.Fatalf("report state %q", reportResp.State)
	}
	if !reportResp.PersistWarning {
		t.Fatal("sheet failure must raise persist warning")
	}
	if reportResp.Report.Unavailable || reportResp.Report.Disclaimer == "" {
		t.Fatalf("report: %+v", reportResp.Report)
	}
	if len(reportResp.Report.Citations) != 1 || reportResp.Report.Citations[0].URL != "https://journal.example/review" {
		t.Fatalf("citations: %+v", reportResp.Report.Citations)
	}

	exportReq, err := http.NewRequest(http.MethodGet, sessURL+"/export", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	exportResp, err := client.Do(exportReq)
	if err != nil {
		t.Fatalf("export request: %v", err)
	}
	defer exportResp.Body.Close()
	if exportResp.StatusCode != http.StatusOK {
		t.Fatalf("export status %d", exportResp.StatusCode)
	}
	if cd := exportResp.Header.Get("Content-Disposition"); !strings.Contains(cd, "SMDS27_Result_Budi_") {
		t.Fatalf("content disposition %q", cd)
	}
	artifact, err := io.ReadAll(exportResp.Body)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	for _, want := range []string{"Alias: Budi", "Total score: 81", "DISCLAIMER"} {
		if !strings.Contains(string(artifact), want) {
			t.Fatalf("export artifact missing %q", want)
		}
	}

	if len(records.records) != 1 {
		t.Fatalf("durable store has %d records", len(records.records))
	}
}

func TestAdminRecordsRequiresAuth(t *testing.T) {
	records := &memRecordStore{}
	srv := newTestServer(t, records)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(srv.URL + "/api/admin/records")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status %d", resp.StatusCode)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	doPost(t, client, srv.URL+"/api/auth/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "s3cret",
	}, &loginResp)
	if loginResp.Token == "" {
		t.Fatal("login did not return token")
	}

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/admin/records", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+loginResp.Token)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("authenticated status %d", resp.StatusCode)
	}
	csvData, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if !strings.HasPrefix(string(csvData), "timestamp,alias,") {
		t.Fatalf("unexpected csv header: %s", firstLine(string(csvData)))
	}
}

func TestOutOfOrderSubmissionConflicts(t *testing.T) {
	srv := newTestServer(t, &memRecordStore{})
	client := &http.Client{Timeout: 5 * time.Second}

	var createResp struct {
		SessionID string `json:"session_id"`
	}
	doPost(t, client, srv.URL+"/api/sessions", "", nil, &createResp)

	payload, _ := json.Marshal(map[string]any{"answers": []map[string]int{{"item_id": 1, "value": 2}}})
	resp, err := client.Post(srv.URL+"/api/sessions/"+createResp.SessionID+"/responses",
		"application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("responses before profile: status %d", resp.StatusCode)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func doGet(t *testing.T, client *http.Client, url, token string, out any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http get %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(body))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
}

func doPost(t *testing.T, client *http.Client, url, token string, body any, out any) {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	} else {
		payload = []byte("{}")
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http post %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(bodyBytes))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
}
