package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amishk599/liveroles/internal/model"
	"github.com/amishk599/liveroles/internal/transport"
)

const ashbyBaseURL = "https://api.ashbyhq.com/posting-api/job-board"

// ashbyJob represents a single job in the Ashby job board API response.
type ashbyJob struct {
	Title            text  `json:"title"`
	Location         text  `json:"location"`
	LocationName     text  `json:"locationName"`
	JobURL           text  `json:"jobUrl"`
	ApplyURL         text  `json:"applyUrl"`
	URL              text  `json:"url"`
	UpdatedAt        text  `json:"updatedAt"`
	PublishedAt      text  `json:"publishedAt"`
	OrganizationName text  `json:"organizationName"`
	Description      text  `json:"descriptionHtml"`
	DescriptionPlain text  `json:"description"`
	IsListed         *flag `json:"isListed"`
	IsRemote         flag  `json:"isRemote"`
	EmploymentType   text  `json:"employmentType"`
}

// AshbyAdapter fetches jobs from the Ashby public job board API.
type AshbyAdapter struct {
	client *transport.Client
}

// NewAshbyAdapter creates an Ashby adapter; the target is the organization slug.
func NewAshbyAdapter(client *transport.Client) *AshbyAdapter {
	return &AshbyAdapter{client: client}
}

func (a *AshbyAdapter) Kind() model.ProviderKind { return model.KindAshby }

// Fetch retrieves all listed jobs on the board and normalizes them.
// The endpoint has returned both a bare array and {"jobs": [...]}.
func (a *AshbyAdapter) Fetch(ctx context.Context, target model.Target) ([]model.Posting, error) {
	url := fmt.Sprintf("%s/%s", ashbyBaseURL, target.ID)

	var raw json.RawMessage
	if err := a.client.GetJSON(ctx, string(a.Kind()), url, &raw); err != nil {
		return nil, fmt.Errorf("ashby fetch for %s: %w", target.ID, err)
	}

	jobs := list[ashbyJob](raw, "jobs")
	postings := make([]model.Posting, 0, len(jobs))
	for _, aj := range jobs {
		if aj.IsListed != nil && !bool(*aj.IsListed) {
			continue
		}

		var jobTypes []string
		if t := aj.EmploymentType.String(); t != "" {
			jobTypes = []string{t}
		}

		postings = append(postings, model.Posting{
			Source:      string(model.KindAshby),
			Company:     firstOf(aj.OrganizationName.String(), target.ID),
			Title:       aj.Title.String(),
			Location:    firstOf(aj.Location.String(), aj.LocationName.String()),
			URL:         firstOf(aj.JobURL.String(), aj.ApplyURL.String(), aj.URL.String()),
			UpdatedAt:   model.StringPtr(firstOf(aj.UpdatedAt.String(), aj.PublishedAt.String())),
			Description: StripHTML(firstOf(string(aj.Description), string(aj.DescriptionPlain))),
			JobTypes:    jobTypes,
			Remote:      bool(aj.IsRemote),
		})
	}
	return postings, nil
}
