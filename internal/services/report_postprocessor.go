package services

import (
	"net/url"
	"strings"
	"time"

	"github.com/psylab-id/smds27/internal/models"
	"github.com/psylab-id/smds27/internal/utils"
)

// DefaultRedirectHosts lists hosts the generator vendor uses for its
// internal grounding redirects. Links through them are opaque to the user
// and are never presented as sources.
var DefaultRedirectHosts = []string{"vertexaisearch.cloud.google.com"}

const redirectPathMarker = "grounding-api-redirect"

// PostProcessor normalizes raw generator output into a Report. It never
// fails: empty or missing narrative text yields a valid report shell.
type PostProcessor struct {
	redirectHosts []string
	now           func() time.Time
}

func NewPostProcessor(redirectHosts []string) *PostProcessor {
	if len(redirectHosts) == 0 {
		redirectHosts = DefaultRedirectHosts
	}
	return &PostProcessor{
		redirectHosts: redirectHosts,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Finalize builds the final Report from untrusted narrative text and the
// grounding candidates. The disclaimer is always attached, regardless of
// what the narrative already says.
func (p *PostProcessor) Finalize(locale, raw string, candidates []models.Citation) *models.Report {
	rep := &models.Report{
		Disclaimer:  utils.T(locale, "report.disclaimer"),
		GeneratedAt: p.now(),
	}
	body := strings.TrimSpace(raw)
	if body == "" {
		rep.Unavailable = true
		return rep
	}
	rep.Body = p.normalizeBody(body)
	rep.Citations = p.verifiedCitations(candidates)
	return rep
}

// span is one segment of the narrative: plain text, or a markdown link
// with its label. Rewrites operate on the span sequence, never on
// character offsets into the whole string.
type span struct {
	text string
	link string // empty for plain text spans
}

func parseSpans(s string) []span {
	var spans []span
	var plain strings.Builder
	i := 0
	for i < len(s) {
		// A link needs the nearest ] after [ to be followed directly by (.
		// Anything else, like a bare [1] marker, is plain text.
		if s[i] == '[' {
			if close := strings.IndexByte(s[i:], ']'); close > 0 {
				closeAt := i + close
				if closeAt+1 < len(s) && s[closeAt+1] == '(' {
					if end := strings.IndexByte(s[closeAt+2:], ')'); end >= 0 {
						endAt := closeAt + 2 + end
						if plain.Len() > 0 {
							spans = append(spans, span{text: plain.String()})
							plain.Reset()
						}
						spans = append(spans, span{text: s[i+1 : closeAt], link: s[closeAt+2 : endAt]})
						i = endAt + 1
						continue
					}
				}
			}
		}
		plain.WriteByte(s[i])
		i++
	}
	if plain.Len() > 0 {
		spans = append(spans, span{text: plain.String()})
	}
	return spans
}

// normalizeBody rewrites malformed or vendor-redirected links to plain
// emphasis so the user never sees a dead or opaque link.
func (p *PostProcessor) normalizeBody(body string) string {
	var b strings.Builder
	for _, sp := range parseSpans(body) {
		if sp.link == "" {
			b.WriteString(sp.text)
			continue
		}
		if p.trustedURL(sp.link) {
			b.WriteString("[" + sp.text + "](" + strings.TrimSpace(sp.link) + ")")
			continue
		}
		if label := strings.TrimSpace(sp.text); label != "" {
			b.WriteString("*" + label + "*")
		}
	}
	return b.String()
}

// verifiedCitations deduplicates candidates by URL, drops malformed and
// vendor-redirect entries, and preserves first-seen order.
func (p *PostProcessor) verifiedCitations(candidates []models.Citation) []models.Citation {
	var out []models.Citation
	seen := map[string]bool{}
	for _, c := range candidates {
		u, ok := p.parseTrusted(c.URL)
		if !ok {
			continue
		}
		key := strings.ToLower(u.Host) + strings.TrimRight(u.Path, "/")
		if u.RawQuery != "" {
			key += "?" + u.RawQuery
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		title := strings.TrimSpace(c.Title)
		if title == "" {
			title = u.Host
		}
		out = append(out, models.Citation{Title: title, URL: strings.TrimSpace(c.URL)})
	}
	return out
}

func (p *PostProcessor) trustedURL(raw string) bool {
	_, ok := p.parseTrusted(raw)
	return ok
}

func (p *PostProcessor) parseTrusted(raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	if u.Host == "" {
		return nil, false
	}
	host := strings.ToLower(u.Hostname())
	for _, rh := range p.redirectHosts {
		if host == rh || strings.HasSuffix(host, "."+rh) {
			return nil, false
		}
	}
	if strings.Contains(u.Path, redirectPathMarker) {
		return nil, false
	}
	return u, true
}
