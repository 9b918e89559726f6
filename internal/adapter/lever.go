package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/amishk599/liveroles/internal/model"
	"github.com/amishk599/liveroles/internal/transport"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

// leverJob represents a single job in the Lever API response.
type leverJob struct {
	Text             text  `json:"text"`
	Description      text  `json:"description"`
	DescriptionPlain text  `json:"descriptionPlain"`
	CreatedAt        int64 `json:"createdAt"`
	WorkplaceType    text  `json:"workplaceType"`
	HostedURL        text  `json:"hostedUrl"`
	ApplyURL         text  `json:"applyUrl"`
	Categories       struct {
		Location     text   `json:"location"`
		Commitment   text   `json:"commitment"`
		AllLocations []text `json:"allLocations"`
	} `json:"categories"`
}

// LeverAdapter fetches jobs from the Lever public postings API.
type LeverAdapter struct {
	client *transport.Client
}

// NewLeverAdapter creates a Lever adapter; the target is the company slug.
func NewLeverAdapter(client *transport.Client) *LeverAdapter {
	return &LeverAdapter{client: client}
}

func (a *LeverAdapter) Kind() model.ProviderKind { return model.KindLever }

// Fetch retrieves all postings for the company and normalizes them.
func (a *LeverAdapter) Fetch(ctx context.Context, target model.Target) ([]model.Posting, error) {
	url := fmt.Sprintf("%s/%s?mode=json", leverBaseURL, target.ID)

	var jobs []leverJob
	if err := a.client.GetJSON(ctx, string(a.Kind()), url, &jobs); err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", target.ID, err)
	}

	postings := make([]model.Posting, 0, len(jobs))
	for _, lj := range jobs {
		// Prefer allLocations when present, fall back to the primary location.
		location := lj.Categories.Location.String()
		if len(lj.Categories.AllLocations) > 0 {
			all := make([]string, 0, len(lj.Categories.AllLocations))
			for _, l := range lj.Categories.AllLocations {
				all = append(all, l.String())
			}
			location = joinNonEmpty(", ", all...)
		}

		description := StripHTML(string(lj.Description))
		if description == "" {
			description = StripHTML(string(lj.DescriptionPlain))
		}

		var jobTypes []string
		if c := lj.Categories.Commitment.String(); c != "" {
			jobTypes = []string{c}
		}

		postings = append(postings, model.Posting{
			Source:      string(model.KindLever),
			Company:     target.ID,
			Title:       lj.Text.String(),
			Location:    location,
			URL:         firstOf(lj.HostedURL.String(), lj.ApplyURL.String()),
			UpdatedAt:   model.StringPtr(unixMillisToISO(lj.CreatedAt)),
			Description: description,
			JobTypes:    jobTypes,
			Remote:      strings.EqualFold(lj.WorkplaceType.String(), "remote"),
		})
	}
	return postings, nil
}
