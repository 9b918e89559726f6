package adapter

import (
	"context"
	"fmt"

	"github.com/amishk599/liveroles/internal/model"
	"github.com/amishk599/liveroles/internal/transport"
)

const smartRecruitersBaseURL = "https://api.smartrecruiters.com/v1/companies"

type smartRecruitersPosting struct {
	ID           text `json:"id"`
	Name         text `json:"name"`
	Ref          text `json:"ref"`
	ReleasedDate text `json:"releasedDate"`
	PostingDate  text `json:"postingDate"`
	Company      struct {
		Name text `json:"name"`
	} `json:"company"`
	Location struct {
		FullLocation text `json:"fullLocation"`
		City         text `json:"city"`
		Country      text `json:"country"`
		Remote       flag `json:"remote"`
	} `json:"location"`
	TypeOfEmployment struct {
		Label text `json:"label"`
	} `json:"typeOfEmployment"`
	JobAd struct {
		Sections struct {
			JobDescription struct {
				Text text `json:"text"`
			} `json:"jobDescription"`
		} `json:"sections"`
	} `json:"jobAd"`
}

type smartRecruitersResponse struct {
	Content []smartRecruitersPosting `json:"content"`
}

// SmartRecruitersAdapter fetches postings from the SmartRecruiters public API.
type SmartRecruitersAdapter struct {
	client *transport.Client
}

func NewSmartRecruitersAdapter(client *transport.Client) *SmartRecruitersAdapter {
	return &SmartRecruitersAdapter{client: client}
}

func (a *SmartRecruitersAdapter) Kind() model.ProviderKind { return model.KindSmartRecruiters }

func (a *SmartRecruitersAdapter) Fetch(ctx context.Context, target model.Target) ([]model.Posting, error) {
	url := fmt.Sprintf("%s/%s/postings?limit=100", smartRecruitersBaseURL, target.ID)

	var resp smartRecruitersResponse
	if err := a.client.GetJSON(ctx, string(a.Kind()), url, &resp); err != nil {
		return nil, fmt.Errorf("smartrecruiters fetch for %s: %w", target.ID, err)
	}

	postings := make([]model.Posting, 0, len(resp.Content))
	for _, sp := range resp.Content {
		var jobTypes []string
		if l := sp.TypeOfEmployment.Label.String(); l != "" {
			jobTypes = []string{l}
		}
		postings = append(postings, model.Posting{
			Source:  string(model.KindSmartRecruiters),
			Company: firstOf(sp.Company.Name.String(), target.ID),
			Title:   sp.Name.String(),
			Location: firstOf(
				sp.Location.FullLocation.String(),
				joinNonEmpty(", ", sp.Location.City.String(), sp.Location.Country.String()),
			),
			URL: firstOf(
				sp.Ref.String(),
				fmt.Sprintf("https://jobs.smartrecruiters.com/%s/%s", target.ID, sp.ID.String()),
			),
			UpdatedAt:   model.StringPtr(firstOf(sp.ReleasedDate.String(), sp.PostingDate.String())),
			Description: StripHTML(string(sp.JobAd.Sections.JobDescription.Text)),
			JobTypes:    jobTypes,
			Remote:      bool(sp.Location.Remote),
		})
	}
	return postings, nil
}
