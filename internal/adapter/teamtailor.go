package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amishk599/liveroles/internal/model"
	"github.com/amishk599/liveroles/internal/transport"
)

type teamtailorJob struct {
	ID           text `json:"id"`
	Title        text `json:"title"`
	CompanyName  text `json:"company_name"`
	Location     text `json:"location"`
	City         text `json:"city"`
	URL          text `json:"url"`
	UpdatedAt    text `json:"updated_at"`
	CreatedAt    text `json:"created_at"`
	Body         text `json:"body"`
	Description  text `json:"description"`
	RemoteStatus text `json:"remote_status"`
}

// TeamtailorAdapter fetches jobs from a company's Teamtailor career site.
type TeamtailorAdapter struct {
	client *transport.Client
}

func NewTeamtailorAdapter(client *transport.Client) *TeamtailorAdapter {
	return &TeamtailorAdapter{client: client}
}

func (a *TeamtailorAdapter) Kind() model.ProviderKind { return model.KindTeamtailor }

func (a *TeamtailorAdapter) Fetch(ctx context.Context, target model.Target) ([]model.Posting, error) {
	url := fmt.Sprintf("https://%s.teamtailor.com/jobs.json", target.ID)

	var raw json.RawMessage
	if err := a.client.GetJSON(ctx, string(a.Kind()), url, &raw); err != nil {
		return nil, fmt.Errorf("teamtailor fetch for %s: %w", target.ID, err)
	}

	jobs := list[teamtailorJob](raw, "jobs")
	postings := make([]model.Posting, 0, len(jobs))
	for _, tj := range jobs {
		postings = append(postings, model.Posting{
			Source:      string(model.KindTeamtailor),
			Company:     firstOf(tj.CompanyName.String(), target.ID),
			Title:       tj.Title.String(),
			Location:    firstOf(tj.Location.String(), tj.City.String()),
			URL:         firstOf(tj.URL.String(), fmt.Sprintf("https://%s.teamtailor.com/jobs/%s", target.ID, tj.ID.String())),
			UpdatedAt:   model.StringPtr(firstOf(tj.UpdatedAt.String(), tj.CreatedAt.String())),
			Description: StripHTML(firstOf(string(tj.Body), string(tj.Description))),
			Remote:      tj.RemoteStatus.String() == "fully",
		})
	}
	return postings, nil
}
