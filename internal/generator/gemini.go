// Package generator adapts the Gemini API with Google Search grounding to
// the narrative-generator contract. A failure or timeout here surfaces as
// an error; the session service turns it into a report shell.
package generator

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/psylab-id/smds27/internal/models"
	"github.com/psylab-id/smds27/internal/services"
)

// ErrNotConfigured means no API key is present; the caller should run
// without a generator rather than fail.
var ErrNotConfigured = errors.New("generator: GEMINI_API_KEY not set")

const (
	defaultModel   = "gemini-2.5-flash"
	defaultTimeout = 90 * time.Second
)

type Config struct {
	APIKey         string
	Model          string
	Timeout        time.Duration
	ThinkingBudget int32
}

type Gemini struct {
	client         *genai.Client
	model          string
	timeout        time.Duration
	thinkingBudget int32
}

// NewFromEnv builds a Gemini generator from GEMINI_API_KEY, GEMINI_MODEL,
// GEMINI_TIMEOUT and GEMINI_THINKING_BUDGET.
func NewFromEnv(ctx context.Context) (*Gemini, error) {
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	cfg := Config{APIKey: apiKey, Model: os.Getenv("GEMINI_MODEL")}
	if v := strings.TrimSpace(os.Getenv("GEMINI_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("generator: invalid GEMINI_TIMEOUT %q, using default", v)
		} else {
			cfg.Timeout = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("GEMINI_THINKING_BUDGET")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("generator: invalid GEMINI_THINKING_BUDGET %q, ignoring", v)
		} else {
			cfg.ThinkingBudget = int32(n)
		}
	}
	return New(ctx, cfg)
}

func New(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Gemini{client: client, model: model, timeout: timeout, thinkingBudget: cfg.ThinkingBudget}, nil
}

// Generate renders the request prompt, invokes the model and extracts the
// grounding candidates. The call is bounded by the configured timeout.
func (g *Gemini) Generate(ctx context.Context, req *services.ReportRequest) (*services.NarrativeResult, error) {
	if g.client == nil {
		return nil, errors.New("generator: nil client")
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemInstruction(), genai.RoleUser),
	}
	if req.Options.RequireGrounding {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	if g.thinkingBudget > 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(g.thinkingBudget)}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt()), cfg)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, errors.New("generator: empty response")
	}
	return &services.NarrativeResult{Text: text, Candidates: groundingCitations(resp)}, nil
}

// groundingCitations pulls the web sources out of the grounding metadata.
// Missing or partial metadata is tolerated; the post-processor filters
// them further.
func groundingCitations(resp *genai.GenerateContentResponse) []models.Citation {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	md := resp.Candidates[0].GroundingMetadata
	if md == nil {
		return nil
	}
	var out []models.Citation
	for _, chunk := range md.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		out = append(out, models.Citation{Title: chunk.Web.Title, URL: chunk.Web.URI})
	}
	return out
}
