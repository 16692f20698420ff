package services

import (
	"fmt"
	"strings"

	"github.com/psylab-id/smds27/internal/models"
)

// CitationStyle selects how the narrative generator is asked to present
// its sources.
type CitationStyle string

const (
	CitationInline   CitationStyle = "inline"
	CitationAppendix CitationStyle = "appendix"
)

// BuilderOptions collapses the historical prompt variants into one
// configuration object.
type BuilderOptions struct {
	RequireGrounding bool
	CitationStyle    CitationStyle
	Locale           string
	ThinkingBudget   int
}

// DefaultBuilderOptions mirrors the grounded, appendix-cited configuration
// the screening flow ships with.
func DefaultBuilderOptions() BuilderOptions {
	return BuilderOptions{
		RequireGrounding: true,
		CitationStyle:    CitationAppendix,
		Locale:           "en",
		ThinkingBudget:   1024,
	}
}

// DimensionBreakdown is one dimension's subtotal as handed to the
// narrative generator.
type DimensionBreakdown struct {
	Name    string  `json:"name"`
	Sum     int     `json:"sum"`
	Max     int     `json:"max"`
	Percent float64 `json:"percent"`
}

// ReportRequest is the complete, bounded payload for the narrative
// generator. It always carries the full per-item response map; downstream
// claims depend on the whole answer pattern, not just the total.
type ReportRequest struct {
	Profile    models.UserProfile `json:"profile"`
	Responses  models.ResponseSet `json:"responses"`
	TotalScore int                `json:"total_score"`
	MinScore   int                `json:"min_score"`
	MaxScore   int                `json:"max_score"`
	Severity   models.SeverityBand  `json:"severity"`
	Dimensions []DimensionBreakdown `json:"dimensions"`
	Options    BuilderOptions       `json:"options"`
}

// BuildRequest assembles a ReportRequest from a profile, the raw
// responses and a score fragment. It is pure and re-validates its inputs;
// it never truncates or omits an item's response.
func BuildRequest(profile models.UserProfile, responses models.ResponseSet, frag *ScoreFragment, opts BuilderOptions) (*ReportRequest, error) {
	if frag == nil {
		return nil, NewInvalidError("score fragment required")
	}
	if err := ValidateResponses(responses); err != nil {
		return nil, err
	}
	sum := 0
	for _, ds := range frag.DimensionScores {
		sum += ds.Sum
	}
	if sum != frag.TotalScore {
		return nil, NewInvalidError(fmt.Sprintf("dimension sums add to %d, total is %d", sum, frag.TotalScore))
	}
	if opts.Locale == "" {
		opts.Locale = "en"
	}
	if opts.CitationStyle == "" {
		opts.CitationStyle = CitationAppendix
	}

	rs := make(models.ResponseSet, len(responses))
	for id, v := range responses {
		rs[id] = v
	}

	dims := make([]DimensionBreakdown, 0, len(frag.DimensionScores))
	for _, name := range Dimensions() {
		ds, ok := frag.DimensionScores[name]
		if !ok {
			return nil, NewInvalidError("dimension scores missing " + name)
		}
		max := ds.ItemCount * LikertMax
		pct := 0.0
		if max > 0 {
			pct = float64(ds.Sum) / float64(max) * 100
		}
		dims = append(dims, DimensionBreakdown{Name: name, Sum: ds.Sum, Max: max, Percent: pct})
	}

	return &ReportRequest{
		Profile:    profile,
		Responses:  rs,
		TotalScore: frag.TotalScore,
		MinScore:   MinTotalScore,
		MaxScore:   MaxTotalScore,
		Severity:   frag.Severity,
		Dimensions: dims,
		Options:    opts,
	}, nil
}

var localeNames = map[string]string{
	"en": "English",
	"id": "Indonesian",
}

// Prompt renders the request into the natural-language instruction sent
// to the generator. Rendering is deterministic for a given request.
func (r *ReportRequest) Prompt() string {
	lang := localeNames[r.Options.Locale]
	if lang == "" {
		lang = localeNames["en"]
	}

	var b strings.Builder
	b.WriteString("Act as a senior clinical psychologist and academic researcher specialising in cyberpsychology and addictive behaviours.\n")
	b.WriteString("Analyse the following SMDS-27 (Social Media Disorder Scale, 27 items) screening result in depth: scientific, yet warm and non-judgmental.\n\n")

	b.WriteString("USER DATA:\n")
	fmt.Fprintf(&b, "- Alias: %s\n", r.Profile.Alias)
	fmt.Fprintf(&b, "- Age: %d\n", r.Profile.Age)
	fmt.Fprintf(&b, "- Gender: %s\n", r.Profile.Gender)
	fmt.Fprintf(&b, "- Occupation: %s\n", r.Profile.Occupation)
	fmt.Fprintf(&b, "- TOTAL SCORE: %d (range %d-%d)\n", r.TotalScore, r.MinScore, r.MaxScore)
	desc := r.Severity.DescI18n[r.Options.Locale]
	if desc == "" {
		desc = r.Severity.DescI18n["en"]
	}
	fmt.Fprintf(&b, "- Category: %s — %s\n\n", r.Severity.Label, desc)

	b.WriteString("SCORES PER DIMENSION (9 SMDS dimensions):\n")
	for _, d := range r.Dimensions {
		fmt.Fprintf(&b, "- %s: %d/%d (%.1f%%)\n", d.Name, d.Sum, d.Max, d.Percent)
	}

	fmt.Fprintf(&b, "\nITEM RESPONSES (%d-%d scale):\n", LikertMin, LikertMax)
	for id := 1; id <= ItemCount; id++ {
		fmt.Fprintf(&b, "Item %d: %d\n", id, r.Responses[id])
	}

	b.WriteString("\nINSTRUCTIONS (follow in order):\n")
	if r.Options.RequireGrounding {
		b.WriteString("1. Use the web search tool to find recent (preferably last 5 years) peer-reviewed literature on SMDS cutoff interpretation and on social media addiction in this user's demographic. Base every clinical claim on what you find.\n")
	} else {
		b.WriteString("1. Base the analysis on established peer-reviewed findings on social media disorder; do not speculate beyond them.\n")
	}
	b.WriteString("2. Interpret the total score and category, then discuss the answer pattern: name the highest-scoring dimensions and their psychological implications for this user specifically.\n")
	b.WriteString("3. Give three concrete, evidence-based recommendations suited to the user's age and occupation.\n")
	switch r.Options.CitationStyle {
	case CitationInline:
		b.WriteString("4. Cite sources inline as markdown links next to each claim.\n")
	default:
		b.WriteString("4. End with a numbered reference list of the articles used, as markdown links.\n")
	}
	b.WriteString("\nCONSTRAINTS: never invent references; if no source covers a claim, drop the claim. ")
	fmt.Fprintf(&b, "Write the report in %s.\n", lang)
	return b.String()
}

// SystemInstruction is the persona instruction paired with every prompt.
func (r *ReportRequest) SystemInstruction() string {
	return "You are an evidence-based AI psychologist. Your priorities are scientific accuracy and user safety. " +
		"Every claim about diagnosis or mental-health impact must be verifiable, with its source linked."
}
