package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/psylab-id/smds27/internal/models"
)

// SessionState is one step of the screening flow. Transitions are strictly
// forward: profile -> questionnaire -> reporting -> done.
type SessionState string

const (
	StateProfile       SessionState = "profile"
	StateQuestionnaire SessionState = "questionnaire"
	StateReporting     SessionState = "reporting"
	StateDone          SessionState = "done"
)

// Session carries one respondent's in-progress screening. Sessions are
// isolated from each other; the record inside is immutable once created.
type Session struct {
	ID             string
	State          SessionState
	Locale         string
	Profile        *models.UserProfile
	Record         *models.AssessmentRecord
	Report         *models.Report
	PersistWarning bool
	CreatedAt      time.Time
}

// SessionStore abstracts per-session storage.
type SessionStore interface {
	AddSession(s *Session) error
	GetSession(id string) (*Session, error)
	UpdateSession(s *Session) error
}

// RecordStore persists completed assessment records durably.
type RecordStore interface {
	AddRecord(rec *models.AssessmentRecord, reportText string) error
	ListRecords() ([]*models.AssessmentRecord, error)
}

// NarrativeResult is the raw generator output before post-processing.
type NarrativeResult struct {
	Text       string
	Candidates []models.Citation
}

// NarrativeGenerator produces the narrative analysis for a report
// request. Implementations own their timeout; a failure here is always
// recoverable.
type NarrativeGenerator interface {
	Generate(ctx context.Context, req *ReportRequest) (*NarrativeResult, error)
}

// RecordAppender is the best-effort spreadsheet collaborator.
type RecordAppender interface {
	Append(ctx context.Context, rec *models.AssessmentRecord) error
}

// Genders returns the accepted gender tokens.
func Genders() []string {
	return []string{"male", "female", "non_binary", "unspecified"}
}

const (
	MinAge = 10
	MaxAge = 100
)

// SessionServiceConfig wires the session service. Records, Generator and
// Appender are optional; a nil generator or appender degrades to the shell
// report / persistence warning paths.
type SessionServiceConfig struct {
	Sessions  SessionStore
	Records   RecordStore
	Generator NarrativeGenerator
	Appender  RecordAppender
	Scorer    *Scorer
	Post      *PostProcessor
	Builder   BuilderOptions
}

// SessionService hosts the screening flow: profile collection,
// questionnaire scoring, report generation and persistence.
type SessionService struct {
	sessions  SessionStore
	records   RecordStore
	generator NarrativeGenerator
	appender  RecordAppender
	scorer    *Scorer
	post      *PostProcessor
	builder   BuilderOptions
	now       func() time.Time
	idGen     func() string
}

func NewSessionService(cfg SessionServiceConfig) *SessionService {
	return &SessionService{
		sessions:  cfg.Sessions,
		records:   cfg.Records,
		generator: cfg.Generator,
		appender:  cfg.Appender,
		scorer:    cfg.Scorer,
		post:      cfg.Post,
		builder:   cfg.Builder,
		now:       func() time.Time { return time.Now().UTC() },
		idGen:     func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:12] },
	}
}

// Create starts a new session in the profile state.
func (s *SessionService) Create(locale string) (*Session, error) {
	if locale == "" {
		locale = "en"
	}
	sess := &Session{
		ID:        s.idGen(),
		State:     StateProfile,
		Locale:    locale,
		CreatedAt: s.now(),
	}
	if err := s.sessions.AddSession(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get returns the session or a not_found error.
func (s *SessionService) Get(id string) (*Session, error) {
	sess, err := s.sessions.GetSession(id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, NewNotFoundError("session not found")
	}
	return sess, nil
}

// SubmitProfile validates and attaches the profile, moving the session to
// the questionnaire step. The profile is immutable afterwards.
func (s *SessionService) SubmitProfile(id string, p models.UserProfile) (*Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if sess.State != StateProfile {
		return nil, NewConflictError("profile already submitted")
	}
	if err := validateProfile(&p); err != nil {
		return nil, err
	}
	sess.Profile = &p
	sess.State = StateQuestionnaire
	if err := s.sessions.UpdateSession(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func validateProfile(p *models.UserProfile) error {
	var problems []string
	p.Alias = strings.TrimSpace(p.Alias)
	p.Occupation = strings.TrimSpace(p.Occupation)
	p.Gender = strings.TrimSpace(strings.ToLower(p.Gender))
	if p.Alias == "" {
		problems = append(problems, "alias required")
	}
	if p.Age < MinAge || p.Age > MaxAge {
		problems = append(problems, fmt.Sprintf("age must be %d..%d", MinAge, MaxAge))
	}
	valid := false
	for _, g := range Genders() {
		if p.Gender == g {
			valid = true
			break
		}
	}
	if !valid {
		problems = append(problems, "gender must be one of "+strings.Join(Genders(), ", "))
	}
	if p.Occupation == "" {
		problems = append(problems, "occupation required")
	}
	if len(problems) > 0 {
		return NewInvalidError(strings.Join(problems, "; "))
	}
	return nil
}

// SubmitResponses scores the complete response set and creates the
// assessment record. Re-submission after scoring is a conflict; an
// amended assessment needs a new session.
func (s *SessionService) SubmitResponses(id string, answers models.ResponseSet) (*Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	switch sess.State {
	case StateProfile:
		return nil, NewConflictError("profile not submitted yet")
	case StateQuestionnaire:
	default:
		return nil, NewConflictError("responses already scored")
	}
	frag, err := s.scorer.Score(answers)
	if err != nil {
		return nil, err
	}
	rs := make(models.ResponseSet, len(answers))
	for k, v := range answers {
		rs[k] = v
	}
	sess.Record = &models.AssessmentRecord{
		ID:              s.idGen(),
		Profile:         *sess.Profile,
		Responses:       rs,
		TotalScore:      frag.TotalScore,
		DimensionScores: frag.DimensionScores,
		Severity:        frag.Severity,
		CreatedAt:       s.now(),
	}
	sess.State = StateReporting
	if err := s.sessions.UpdateSession(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// GenerateReport runs the narrative generator and the post-processor,
// then persists the record (durable store and spreadsheet) on a best
// effort basis. Generator failure yields a report shell, never an error;
// persistence failure only raises the session's warning flag.
func (s *SessionService) GenerateReport(ctx context.Context, id string) (*Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	switch sess.State {
	case StateDone:
		return nil, NewConflictError("report already generated")
	case StateReporting:
	default:
		return nil, NewConflictError("questionnaire not completed")
	}

	frag := &ScoreFragment{
		TotalScore:      sess.Record.TotalScore,
		DimensionScores: sess.Record.DimensionScores,
		Severity:        sess.Record.Severity,
	}
	opts := s.builder
	opts.Locale = sess.Locale
	req, err := BuildRequest(sess.Record.Profile, sess.Record.Responses, frag, opts)
	if err != nil {
		return nil, err
	}

	var res *NarrativeResult
	if s.generator != nil {
		res, err = s.generator.Generate(ctx, req)
		if err != nil {
			log.Printf("session %s: narrative generator unavailable: %v", sess.ID, err)
			res = nil
		}
	}
	if res == nil {
		sess.Report = s.post.Finalize(sess.Locale, "", nil)
	} else {
		sess.Report = s.post.Finalize(sess.Locale, res.Text, res.Candidates)
	}
	sess.State = StateDone

	if s.records != nil {
		if err := s.records.AddRecord(sess.Record, RenderReport(sess.Report, sess.Locale)); err != nil {
			log.Printf("session %s: record store append failed: %v", sess.ID, err)
		}
	}
	if s.appender != nil {
		if err := s.appender.Append(ctx, sess.Record); err != nil {
			log.Printf("session %s: spreadsheet append failed: %v", sess.ID, err)
			sess.PersistWarning = true
		}
	} else {
		sess.PersistWarning = true
	}

	if err := s.sessions.UpdateSession(sess); err != nil {
		return nil, err
	}
	return sess, nil
}
