package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/psylab-id/smds27/internal/models"
)

// ScoreFragment is the deterministic output of scoring a complete
// response set. The caller attaches identity and timestamp.
type ScoreFragment struct {
	TotalScore      int
	DimensionScores map[string]models.DimensionScore
	Severity        models.SeverityBand
}

// DefaultSeverityBands returns the instrument's published cutoffs for the
// 0..4 scale: 27/54/81 over a 0..108 total.
func DefaultSeverityBands() []models.SeverityBand {
	return []models.SeverityBand{
		{
			Label: "Low", Min: 0, Max: 27,
			LabelI18n: map[string]string{"en": "Low", "id": "Rendah"},
			DescI18n: map[string]string{
				"en": "Your social media use is within the normal range.",
				"id": "Penggunaan media sosial Anda dalam batas normal.",
			},
		},
		{
			Label: "Moderate", Min: 28, Max: 54,
			LabelI18n: map[string]string{"en": "Moderate", "id": "Sedang"},
			DescI18n: map[string]string{
				"en": "There are indications of problematic social media use.",
				"id": "Terdapat indikasi penggunaan media sosial yang bermasalah.",
			},
		},
		{
			Label: "High", Min: 55, Max: 81,
			LabelI18n: map[string]string{"en": "High", "id": "Tinggi"},
			DescI18n: map[string]string{
				"en": "There are significant signs of social media addiction.",
				"id": "Terdapat tanda-tanda kecanduan media sosial yang signifikan.",
			},
		},
		{
			Label: "Severe", Min: 82, Max: 108,
			LabelI18n: map[string]string{"en": "Severe", "id": "Sangat Tinggi"},
			DescI18n: map[string]string{
				"en": "There are indications of serious social media addiction.",
				"id": "Indikasi kecanduan media sosial yang serius.",
			},
		},
	}
}

// Scorer maps complete response sets to score fragments. It is pure: no
// I/O, no clock, identical input yields identical output.
type Scorer struct {
	bands []models.SeverityBand
}

// NewScorer validates that bands are ordered, contiguous and cover the
// full [MinTotalScore, MaxTotalScore] range with no gaps or overlaps.
func NewScorer(bands []models.SeverityBand) (*Scorer, error) {
	if len(bands) == 0 {
		return nil, NewInvalidError("at least one severity band required")
	}
	next := MinTotalScore
	for _, b := range bands {
		if b.Label == "" {
			return nil, NewInvalidError("severity band label required")
		}
		if b.Min != next {
			return nil, NewInvalidError(fmt.Sprintf("severity band %q starts at %d, want %d", b.Label, b.Min, next))
		}
		if b.Max < b.Min {
			return nil, NewInvalidError(fmt.Sprintf("severity band %q has max %d below min %d", b.Label, b.Max, b.Min))
		}
		next = b.Max + 1
	}
	if next != MaxTotalScore+1 {
		return nil, NewInvalidError(fmt.Sprintf("severity bands end at %d, want %d", next-1, MaxTotalScore))
	}
	cp := make([]models.SeverityBand, len(bands))
	copy(cp, bands)
	return &Scorer{bands: cp}, nil
}

// Bands returns a copy of the configured band table.
func (s *Scorer) Bands() []models.SeverityBand {
	cp := make([]models.SeverityBand, len(s.bands))
	copy(cp, s.bands)
	return cp
}

// ValidateResponses checks that exactly the 27 catalog item ids are
// answered and every rating is within the 0..4 bounds. The returned
// error names every offending item id; a missing answer is never
// defaulted.
func ValidateResponses(responses models.ResponseSet) error {
	var missing, outOfRange, unknown []int
	for id := 1; id <= ItemCount; id++ {
		v, ok := responses[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		if v < LikertMin || v > LikertMax {
			outOfRange = append(outOfRange, id)
		}
	}
	for id := range responses {
		if id < 1 || id > ItemCount {
			unknown = append(unknown, id)
		}
	}
	if len(missing) == 0 && len(outOfRange) == 0 && len(unknown) == 0 {
		return nil
	}
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing answer for item "+joinIDs(missing))
	}
	if len(outOfRange) > 0 {
		parts = append(parts, fmt.Sprintf("rating out of range (%d..%d) for item %s", LikertMin, LikertMax, joinIDs(outOfRange)))
	}
	if len(unknown) > 0 {
		parts = append(parts, "unknown item "+joinIDs(unknown))
	}
	return NewInvalidError(strings.Join(parts, "; "))
}

func joinIDs(ids []int) string {
	sort.Ints(ids)
	ss := make([]string, len(ids))
	for i, id := range ids {
		ss[i] = strconv.Itoa(id)
	}
	return strings.Join(ss, ", ")
}

// Score computes the total, per-dimension subtotals and the severity band
// for a complete response set.
func (s *Scorer) Score(responses models.ResponseSet) (*ScoreFragment, error) {
	if err := ValidateResponses(responses); err != nil {
		return nil, err
	}
	total := 0
	dims := make(map[string]models.DimensionScore, 9)
	for _, it := range catalogItems {
		v := responses[it.ID]
		total += v
		ds := dims[it.Dimension]
		ds.Sum += v
		ds.ItemCount++
		dims[it.Dimension] = ds
	}
	band, ok := s.bandFor(total)
	if !ok {
		// unreachable with a validated band table
		return nil, NewInvalidError(fmt.Sprintf("no severity band for total %d", total))
	}
	return &ScoreFragment{TotalScore: total, DimensionScores: dims, Severity: band}, nil
}

func (s *Scorer) bandFor(total int) (models.SeverityBand, bool) {
	for _, b := range s.bands {
		if total >= b.Min && total <= b.Max {
			return b, true
		}
	}
	return models.SeverityBand{}, false
}
