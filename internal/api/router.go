package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/psylab-id/smds27/internal/middleware"
	"github.com/psylab-id/smds27/internal/models"
	"github.com/psylab-id/smds27/internal/services"
)

type Router struct {
	svc     *services.SessionService
	auth    *services.AuthService
	records services.RecordStore
}

func NewRouter(svc *services.SessionService, auth *services.AuthService, records services.RecordStore) *Router {
	return &Router{svc: svc, auth: auth, records: records}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/items", rt.handleItems)              // GET
	mux.HandleFunc("/api/sessions", rt.handleCreateSession)   // POST
	mux.HandleFunc("/api/sessions/", rt.handleSessionScoped)  // POST/GET subresources
	mux.HandleFunc("/api/auth/login", rt.handleLogin)         // POST
	mux.Handle("/api/admin/records", middleware.RequireAuth(http.HandlerFunc(rt.handleAdminRecords))) // GET
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	if se, ok := services.AsServiceError(err); ok {
		status := http.StatusInternalServerError
		switch se.Code {
		case services.ErrorInvalid:
			status = http.StatusBadRequest
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorConflict:
			status = http.StatusConflict
		case services.ErrorUnauthorized:
			status = http.StatusUnauthorized
		case services.ErrorBadGateway:
			status = http.StatusBadGateway
		case services.ErrorTooManyRequests:
			status = http.StatusTooManyRequests
		}
		http.Error(w, se.Message, status)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// GET /api/items?lang=xx — the SMDS-27 catalog as the UI renders it.
func (rt *Router) handleItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	type outItem struct {
		ID        int    `json:"id"`
		Dimension string `json:"dimension"`
		Stem      string `json:"stem"`
	}
	items := services.Items()
	out := make([]outItem, 0, len(items))
	for _, it := range items {
		stem := it.StemI18n[locale]
		if stem == "" {
			stem = it.StemI18n["en"]
		}
		out = append(out, outItem{ID: it.ID, Dimension: it.Dimension, Stem: stem})
	}
	writeJSON(w, map[string]any{
		"items":         out,
		"dimensions":    services.Dimensions(),
		"likert_labels": services.LikertLabels(locale),
		"likert_min":    services.LikertMin,
		"likert_max":    services.LikertMax,
		"genders":       services.Genders(),
	})
}

// POST /api/sessions — start a new screening session.
func (rt *Router) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, err := rt.svc.Create(middleware.LocaleFromContext(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, map[string]any{"session_id": sess.ID, "state": sess.State})
}

// /api/sessions/{id}/(profile|responses|report|result|export)
func (rt *Router) handleSessionScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	id, action := parts[0], parts[1]
	switch action {
	case "profile":
		rt.handleProfile(w, r, id)
	case "responses":
		rt.handleResponses(w, r, id)
	case "report":
		rt.handleReport(w, r, id)
	case "result":
		rt.handleResult(w, r, id)
	case "export":
		rt.handleExport(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

// POST /api/sessions/{id}/profile
func (rt *Router) handleProfile(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var p models.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess, err := rt.svc.SubmitProfile(id, p)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true, "session_id": sess.ID, "state": sess.State})
}

// POST /api/sessions/{id}/responses
// { answers: [{item_id, value}] }
func (rt *Router) handleResponses(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Answers []struct {
			ItemID int `json:"item_id"`
			Value  int `json:"value"`
		} `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	answers := make(models.ResponseSet, len(req.Answers))
	for _, a := range req.Answers {
		answers[a.ItemID] = a.Value
	}
	sess, err := rt.svc.SubmitResponses(id, answers)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"ok":          true,
		"session_id":  sess.ID,
		"state":       sess.State,
		"total_score": sess.Record.TotalScore,
		"severity":    sess.Record.Severity,
	})
}

// POST /api/sessions/{id}/report — generate the narrative and persist.
func (rt *Router) handleReport(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, err := rt.svc.GenerateReport(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, sessionView(sess))
}

// GET /api/sessions/{id}/result
func (rt *Router) handleResult(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, err := rt.svc.Get(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, sessionView(sess))
}

// GET /api/sessions/{id}/export — downloadable text artifact.
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, err := rt.svc.Get(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	if sess.State != services.StateDone || sess.Record == nil || sess.Report == nil {
		writeErr(w, services.NewConflictError("report not generated yet"))
		return
	}
	body := services.BuildResultText(sess.Record, sess.Report, sess.Locale)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition",
		"attachment; filename="+services.ExportFilename(sess.Record.Profile.Alias, sess.Record.CreatedAt))
	_, _ = w.Write([]byte(body))
}

// POST /api/auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	token, err := rt.auth.Login(req.Email, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, map[string]string{"token": token})
}

// GET /api/admin/records?format=csv|json
func (rt *Router) handleAdminRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if rt.records == nil {
		http.Error(w, "record store unavailable", http.StatusServiceUnavailable)
		return
	}
	recs, err := rt.records.ListRecords()
	if err != nil {
		writeErr(w, err)
		return
	}
	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, map[string]any{"records": recs, "count": len(recs)})
		return
	}
	b, err := services.ExportRecordsCSV(recs)
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=assessments.csv")
	_, _ = w.Write(b)
}

type reportPayload struct {
	Body        string            `json:"body"`
	Citations   []models.Citation `json:"citations"`
	Disclaimer  string            `json:"disclaimer"`
	Unavailable bool              `json:"unavailable"`
	Text        string            `json:"text"`
}

func sessionView(sess *services.Session) map[string]any {
	out := map[string]any{
		"session_id":      sess.ID,
		"state":           sess.State,
		"persist_warning": sess.PersistWarning,
	}
	if sess.Record != nil {
		out["record"] = sess.Record
	}
	if sess.Report != nil {
		out["report"] = reportPayload{
			Body:        sess.Report.Body,
			Citations:   sess.Report.Citations,
			Disclaimer:  sess.Report.Disclaimer,
			Unavailable: sess.Report.Unavailable,
			Text:        services.RenderReport(sess.Report, sess.Locale),
		}
	}
	return out
}
