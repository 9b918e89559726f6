package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/liveroles/internal/model"
	"github.com/amishk599/liveroles/internal/transport"
)

const officialFallbackCompany = "official-site"

// OfficialPageAdapter extracts schema.org JobPosting blocks embedded as
// JSON-LD in a company career page; the target is the page URL.
type OfficialPageAdapter struct {
	client *transport.Client
}

func NewOfficialPageAdapter(client *transport.Client) *OfficialPageAdapter {
	return &OfficialPageAdapter{client: client}
}

func (a *OfficialPageAdapter) Kind() model.ProviderKind { return model.KindOfficialJSONLD }

func (a *OfficialPageAdapter) Fetch(ctx context.Context, target model.Target) ([]model.Posting, error) {
	page, err := a.client.GetText(ctx, string(a.Kind()), target.ID, transport.AcceptHTML)
	if err != nil {
		return nil, fmt.Errorf("career page fetch for %s: %w", target.ID, err)
	}
	return ParseJobPostings(page, target.ID)
}

// ParseJobPostings returns every JobPosting found in the page's
// application/ld+json blocks. Blocks may hold one object, an array, or an
// @graph container; blocks that fail to parse are skipped. A posting without
// its own url takes pageURL.
func ParseJobPostings(page, pageURL string) ([]model.Posting, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parsing career page %s: %w", pageURL, err)
	}

	var postings []model.Posting
	doc.Find(`script[type*="ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var parsed any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &parsed); err != nil {
			return
		}
		for _, node := range jsonLDNodes(parsed) {
			if p, ok := jobPostingFrom(node, pageURL); ok {
				postings = append(postings, p)
			}
		}
	})
	return postings, nil
}

// jsonLDNodes flattens arrays and @graph containers into a list of objects.
func jsonLDNodes(v any) []map[string]any {
	switch x := v.(type) {
	case []any:
		var out []map[string]any
		for _, item := range x {
			out = append(out, jsonLDNodes(item)...)
		}
		return out
	case map[string]any:
		if graph, ok := x["@graph"]; ok {
			return append([]map[string]any{x}, jsonLDNodes(graph)...)
		}
		return []map[string]any{x}
	}
	return nil
}

func isJobPosting(node map[string]any) bool {
	switch t := node["@type"].(type) {
	case string:
		return strings.EqualFold(t, "JobPosting")
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.EqualFold(s, "JobPosting") {
				return true
			}
		}
	}
	return false
}

func jobPostingFrom(node map[string]any, pageURL string) (model.Posting, bool) {
	if !isJobPosting(node) {
		return model.Posting{}, false
	}
	title := ldString(node["title"])
	url := firstOf(ldString(node["url"]), pageURL)
	if title == "" || url == "" {
		return model.Posting{}, false
	}

	company := officialFallbackCompany
	if org, ok := node["hiringOrganization"].(map[string]any); ok {
		company = firstOf(ldString(org["name"]), company)
	}

	return model.Posting{
		Source:      string(model.KindOfficialJSONLD),
		SourceNote:  "Source: " + pageURL,
		Company:     company,
		Title:       title,
		Location:    ldLocation(node["jobLocation"]),
		URL:         url,
		UpdatedAt:   model.StringPtr(ldString(node["datePosted"])),
		Description: PlainText(ldString(node["description"])),
	}, true
}

// ldLocation renders one or more Place nodes as "locality, region, country",
// joining several places with " | ".
func ldLocation(v any) string {
	var places []any
	switch x := v.(type) {
	case []any:
		places = x
	case nil:
	default:
		places = []any{x}
	}

	var rendered []string
	for _, place := range places {
		p, ok := place.(map[string]any)
		if !ok {
			continue
		}
		var addresses []any
		switch a := p["address"].(type) {
		case []any:
			addresses = a
		case nil:
		default:
			addresses = []any{a}
		}
		for _, addr := range addresses {
			m, ok := addr.(map[string]any)
			if !ok {
				continue
			}
			country := m["addressCountry"]
			if c, ok := country.(map[string]any); ok {
				country = c["name"]
			}
			if s := joinNonEmpty(", ", ldString(m["addressLocality"]), ldString(m["addressRegion"]), ldString(country)); s != "" {
				rendered = append(rendered, s)
			}
		}
	}
	return strings.Join(rendered, " | ")
}

func ldString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strings.TrimSpace(fmt.Sprint(x))
	}
	return ""
}
