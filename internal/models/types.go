package models

import "time"

// UserProfile holds the respondent data collected in step 1.
// The alias is a pseudonym and is never validated as a real identity.
type UserProfile struct {
	Alias      string `json:"alias"`
	Age        int    `json:"age"`
	Gender     string `json:"gender"`
	Occupation string `json:"occupation"`
}

// ScaleItem is one of the 27 SMDS-27 questions. Items are static
// instrument data, never user input.
type ScaleItem struct {
	ID        int               `json:"id"`
	Dimension string            `json:"dimension"`
	StemI18n  map[string]string `json:"stem_i18n"`
}

// ResponseSet maps item id (1..27) to the chosen rating (0..4).
type ResponseSet map[int]int

// DimensionScore is the per-dimension fragment of a scored assessment.
type DimensionScore struct {
	Sum       int `json:"sum"`
	ItemCount int `json:"item_count"`
}

// SeverityBand maps a contiguous total-score range [Min,Max] to a named
// risk category. Bands are configuration; see services.DefaultSeverityBands.
type SeverityBand struct {
	Label     string            `json:"label"`
	Min       int               `json:"min"`
	Max       int               `json:"max"`
	LabelI18n map[string]string `json:"label_i18n,omitempty"`
	DescI18n  map[string]string `json:"desc_i18n,omitempty"`
}

// AssessmentRecord is the derived result of one completed questionnaire.
// It is created once by the session service and never mutated afterwards;
// an amended assessment is a new record.
type AssessmentRecord struct {
	ID              string                    `json:"id"`
	Profile         UserProfile               `json:"profile"`
	Responses       ResponseSet               `json:"responses"`
	TotalScore      int                       `json:"total_score"`
	DimensionScores map[string]DimensionScore `json:"dimension_scores"`
	Severity        SeverityBand              `json:"severity"`
	CreatedAt       time.Time                 `json:"created_at"`
}

// Citation is a (title, url) source surfaced by the narrative generator's
// grounding step.
type Citation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Report is the final text artifact built from the generator output.
// When Unavailable is true the body is empty and the rendered report
// carries an explicit "analysis unavailable" notice instead.
type Report struct {
	Body        string     `json:"body"`
	Citations   []Citation `json:"citations"`
	Disclaimer  string     `json:"disclaimer"`
	Unavailable bool       `json:"unavailable"`
	GeneratedAt time.Time  `json:"generated_at"`
}
