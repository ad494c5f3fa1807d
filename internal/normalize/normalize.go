package normalize

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"beacon-dashboard/internal/domain"
)

// Fields names the board columns a survey answer is read from.
type Fields struct {
	Opportunities string
	Company       string
	Consent       string
	ConsentTokens []string
}

// Item turns one board item into a Response. Missing columns yield empty
// values; it never fails. When catalog is non-nil, opportunities it does
// not know are dropped.
func Item(raw domain.RawItem, f Fields, catalog *domain.Catalog) domain.Response {
	cols := make(map[string]domain.ColumnValue, len(raw.Columns))
	for _, c := range raw.Columns {
		cols[c.ID] = c
	}

	opps := SplitList(cols[f.Opportunities].Text)
	if catalog != nil {
		kept := opps[:0]
		for _, o := range opps {
			if catalog.Known(o) {
				kept = append(kept, o)
			}
		}
		opps = kept
	}

	return domain.Response{
		ID:            raw.ID,
		Company:       Company(cols[f.Company].Text),
		Opportunities: opps,
		Consent:       IsChecked(cols[f.Consent].Text, f.ConsentTokens),
	}
}

func Items(raw []domain.RawItem, f Fields, catalog *domain.Catalog) []domain.Response {
	out := make([]domain.Response, 0, len(raw))
	for _, it := range raw {
		out = append(out, Item(it, f, catalog))
	}
	return out
}

// SplitList splits a comma-delimited dropdown text, trimming entries and
// dropping blank ones. Applying it to its own joined output is a no-op.
func SplitList(text string) []string {
	out := []string{}
	for _, p := range strings.Split(text, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func IsChecked(text string, tokens []string) bool {
	for _, t := range tokens {
		if text == t {
			return true
		}
	}
	return false
}

var tagRe = regexp.MustCompile(`<[a-zA-Z/][^>]*>`)

// Company cleans a free-text company cell. Long-text cells can carry HTML;
// only their text content is kept.
func Company(s string) string {
	if tagRe.MatchString(s) {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return CleanText(s)
}

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}
