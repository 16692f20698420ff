package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/psylab-id/smds27/internal/models"
)

type stubSessionStore struct {
	sessions map[string]*Session
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: map[string]*Session{}}
}

func (s *stubSessionStore) AddSession(sess *Session) error {
	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

func (s *stubSessionStore) GetSession(id string) (*Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

func (s *stubSessionStore) UpdateSession(sess *Session) error {
	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

type stubRecordStore struct {
	records []*models.AssessmentRecord
	reports []string
	fail    bool
}

func (s *stubRecordStore) AddRecord(rec *models.AssessmentRecord, reportText string) error {
	if s.fail {
		return errors.New("disk full")
	}
	s.records = append(s.records, rec)
	s.reports = append(s.reports, reportText)
	return nil
}

func (s *stubRecordStore) ListRecords() ([]*models.AssessmentRecord, error) {
	return s.records, nil
}

type stubGenerator struct {
	result *NarrativeResult
	err    error
	calls  int
}

func (g *stubGenerator) Generate(ctx context.Context, req *ReportRequest) (*NarrativeResult, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

type stubAppender struct {
	appended []*models.AssessmentRecord
	err      error
}

func (a *stubAppender) Append(ctx context.Context, rec *models.AssessmentRecord) error {
	if a.err != nil {
		return a.err
	}
	a.appended = append(a.appended, rec)
	return nil
}

func newTestService(t *testing.T, gen NarrativeGenerator, app RecordAppender, rec RecordStore) *SessionService {
	t.Helper()
	return NewSessionService(SessionServiceConfig{
		Sessions:  newStubSessionStore(),
		Records:   rec,
		Generator: gen,
		Appender:  app,
		Scorer:    mustScorer(t),
		Post:      NewPostProcessor(nil),
		Builder:   DefaultBuilderOptions(),
	})
}

func runToQuestionnaire(t *testing.T, svc *SessionService) *Session {
	t.Helper()
	sess, err := svc.Create("en")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.State != StateProfile {
		t.Fatalf("new session state %s", sess.State)
	}
	if _, err := svc.SubmitProfile(sess.ID, testProfile()); err != nil {
		t.Fatalf("SubmitProfile: %v", err)
	}
	return sess
}

func TestSessionHappyPath(t *testing.T) {
	gen := &stubGenerator{result: &NarrativeResult{
		Text: "Narrative with [source](https://journal.example/p).",
		Candidates: []models.Citation{
			{Title: "Paper", URL: "https://journal.example/p"},
			{Title: "Redirect", URL: "https://vertexaisearch.cloud.google.com/grounding-api-redirect/x"},
		},
	}}
	app := &stubAppender{}
	rec := &stubRecordStore{}
	svc := newTestService(t, gen, app, rec)

	sess := runToQuestionnaire(t, svc)
	sess, err := svc.SubmitResponses(sess.ID, completeResponses(3))
	if err != nil {
		t.Fatalf("SubmitResponses: %v", err)
	}
	if sess.State != StateReporting {
		t.Fatalf("state after responses: %s", sess.State)
	}
	if sess.Record == nil || sess.Record.TotalScore != 81 {
		t.Fatalf("record: %+v", sess.Record)
	}
	if sess.Record.Severity.Label != "High" {
		t.Fatalf("severity: %s", sess.Record.Severity.Label)
	}

	sess, err = svc.GenerateReport(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if sess.State != StateDone {
		t.Fatalf("state after report: %s", sess.State)
	}
	if sess.Report == nil || sess.Report.Unavailable {
		t.Fatalf("report: %+v", sess.Report)
	}
	if len(sess.Report.Citations) != 1 {
		t.Fatalf("citations: %+v", sess.Report.Citations)
	}
	if sess.PersistWarning {
		t.Fatal("unexpected persist warning")
	}
	if len(app.appended) != 1 || len(rec.records) != 1 {
		t.Fatalf("persistence: sheet=%d store=%d", len(app.appended), len(rec.records))
	}
	if gen.calls != 1 {
		t.Fatalf("generator called %d times", gen.calls)
	}
}

func TestSessionForbidsSkippingForward(t *testing.T) {
	svc := newTestService(t, nil, nil, nil)
	sess, err := svc.Create("en")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.SubmitResponses(sess.ID, completeResponses(1)); err == nil {
		t.Fatal("responses accepted before profile")
	}
	if _, err := svc.GenerateReport(context.Background(), sess.ID); err == nil {
		t.Fatal("report generated before questionnaire")
	}
}

func TestSessionImmutableAfterScoring(t *testing.T) {
	svc := newTestService(t, &stubGenerator{result: &NarrativeResult{Text: "ok"}}, &stubAppender{}, nil)
	sess := runToQuestionnaire(t, svc)

	if _, err := svc.SubmitProfile(sess.ID, testProfile()); err == nil {
		t.Fatal("profile resubmission accepted")
	}
	if _, err := svc.SubmitResponses(sess.ID, completeResponses(2)); err != nil {
		t.Fatalf("SubmitResponses: %v", err)
	}
	if _, err := svc.SubmitResponses(sess.ID, completeResponses(4)); err == nil {
		t.Fatal("response resubmission accepted")
	}
	if _, err := svc.GenerateReport(context.Background(), sess.ID); err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if _, err := svc.GenerateReport(context.Background(), sess.ID); err == nil {
		t.Fatal("second report generation accepted")
	}
	got, err := svc.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Record.TotalScore != 54 {
		t.Fatalf("record mutated: total %d", got.Record.TotalScore)
	}
}

func TestSessionProfileValidation(t *testing.T) {
	svc := newTestService(t, nil, nil, nil)
	cases := []models.UserProfile{
		{Alias: "", Age: 20, Gender: "male", Occupation: "student"},
		{Alias: "A", Age: 9, Gender: "male", Occupation: "student"},
		{Alias: "A", Age: 101, Gender: "male", Occupation: "student"},
		{Alias: "A", Age: 20, Gender: "other", Occupation: "student"},
		{Alias: "A", Age: 20, Gender: "male", Occupation: "  "},
	}
	for i, p := range cases {
		sess, err := svc.Create("en")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if _, err := svc.SubmitProfile(sess.ID, p); err == nil {
			t.Fatalf("case %d: invalid profile accepted: %+v", i, p)
		}
	}
}

func TestGeneratorFailureYieldsShellReport(t *testing.T) {
	svc := newTestService(t, &stubGenerator{err: errors.New("timeout")}, &stubAppender{}, nil)
	sess := runToQuestionnaire(t, svc)
	if _, err := svc.SubmitResponses(sess.ID, completeResponses(0)); err != nil {
		t.Fatalf("SubmitResponses: %v", err)
	}
	sess, err := svc.GenerateReport(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("GenerateReport must not fail on generator error, got %v", err)
	}
	if sess.Report == nil || !sess.Report.Unavailable {
		t.Fatalf("expected shell report: %+v", sess.Report)
	}
	if sess.Report.Disclaimer == "" {
		t.Fatal("shell report missing disclaimer")
	}
	if sess.State != StateDone {
		t.Fatalf("state: %s", sess.State)
	}
}

func TestNilGeneratorYieldsShellReport(t *testing.T) {
	svc := newTestService(t, nil, &stubAppender{}, nil)
	sess := runToQuestionnaire(t, svc)
	if _, err := svc.SubmitResponses(sess.ID, completeResponses(4)); err != nil {
		t.Fatalf("SubmitResponses: %v", err)
	}
	sess, err := svc.GenerateReport(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if !sess.Report.Unavailable {
		t.Fatal("expected shell report")
	}
	if sess.Record.Severity.Label != "Severe" {
		t.Fatalf("severity: %s", sess.Record.Severity.Label)
	}
}

func TestAppendFailureOnlyWarns(t *testing.T) {
	rec := &stubRecordStore{}
	svc := newTestService(t, &stubGenerator{result: &NarrativeResult{Text: "ok"}},
		&stubAppender{err: errors.New("quota")}, rec)
	sess := runToQuestionnaire(t, svc)
	if _, err := svc.SubmitResponses(sess.ID, completeResponses(1)); err != nil {
		t.Fatalf("SubmitResponses: %v", err)
	}
	sess, err := svc.GenerateReport(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("GenerateReport must not fail on append error, got %v", err)
	}
	if !sess.PersistWarning {
		t.Fatal("expected persist warning")
	}
	if sess.Report == nil || sess.Report.Unavailable {
		t.Fatal("report should be unaffected by append failure")
	}
	if len(rec.records) != 1 {
		t.Fatal("durable store should still receive the record")
	}
}

func TestRecordStoreFailureDoesNotWarnOrFail(t *testing.T) {
	svc := newTestService(t, &stubGenerator{result: &NarrativeResult{Text: "ok"}},
		&stubAppender{}, &stubRecordStore{fail: true})
	sess := runToQuestionnaire(t, svc)
	if _, err := svc.SubmitResponses(sess.ID, completeResponses(1)); err != nil {
		t.Fatalf("SubmitResponses: %v", err)
	}
	sess, err := svc.GenerateReport(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if sess.State != StateDone {
		t.Fatalf("state: %s", sess.State)
	}
}

func TestUnknownSessionIsNotFound(t *testing.T) {
	svc := newTestService(t, nil, nil, nil)
	_, err := svc.Get("nope")
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestLocaleFlowsIntoReport(t *testing.T) {
	svc := newTestService(t, &stubGenerator{result: &NarrativeResult{Text: "ok"}}, &stubAppender{}, nil)
	sess, err := svc.Create("id")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.SubmitProfile(sess.ID, testProfile()); err != nil {
		t.Fatalf("SubmitProfile: %v", err)
	}
	if _, err := svc.SubmitResponses(sess.ID, completeResponses(2)); err != nil {
		t.Fatalf("SubmitResponses: %v", err)
	}
	sess, err = svc.GenerateReport(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if !strings.Contains(sess.Report.Disclaimer, "Laporan ini") {
		t.Fatalf("expected Indonesian disclaimer, got %q", sess.Report.Disclaimer)
	}
}
