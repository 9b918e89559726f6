package adapter

import (
	"context"
	"fmt"

	"github.com/amishk599/liveroles/internal/model"
	"github.com/amishk599/liveroles/internal/transport"
)

type recruiteeOffer struct {
	Title           text `json:"title"`
	CompanyName     text `json:"company_name"`
	Location        text `json:"location"`
	City            text `json:"city"`
	Country         text `json:"country"`
	CareersURL      text `json:"careers_url"`
	CareersApplyURL text `json:"careers_apply_url"`
	URL             text `json:"url"`
	UpdatedAt       text `json:"updated_at"`
	CreatedAt       text `json:"created_at"`
	Description     text `json:"description"`
	Remote          flag `json:"remote"`
	EmploymentType  text `json:"employment_type_code"`
}

type recruiteeResponse struct {
	Offers []recruiteeOffer `json:"offers"`
}

// RecruiteeAdapter fetches offers from a company's Recruitee career site.
type RecruiteeAdapter struct {
	client *transport.Client
}

func NewRecruiteeAdapter(client *transport.Client) *RecruiteeAdapter {
	return &RecruiteeAdapter{client: client}
}

func (a *RecruiteeAdapter) Kind() model.ProviderKind { return model.KindRecruitee }

func (a *RecruiteeAdapter) Fetch(ctx context.Context, target model.Target) ([]model.Posting, error) {
	url := fmt.Sprintf("https://%s.recruitee.com/api/offers/", target.ID)

	var resp recruiteeResponse
	if err := a.client.GetJSON(ctx, string(a.Kind()), url, &resp); err != nil {
		return nil, fmt.Errorf("recruitee fetch for %s: %w", target.ID, err)
	}

	postings := make([]model.Posting, 0, len(resp.Offers))
	for _, ro := range resp.Offers {
		var jobTypes []string
		if t := ro.EmploymentType.String(); t != "" {
			jobTypes = []string{t}
		}
		postings = append(postings, model.Posting{
			Source:      string(model.KindRecruitee),
			Company:     firstOf(ro.CompanyName.String(), target.ID),
			Title:       ro.Title.String(),
			Location:    joinNonEmpty(", ", ro.Location.String(), ro.City.String(), ro.Country.String()),
			URL:         firstOf(ro.CareersURL.String(), ro.CareersApplyURL.String(), ro.URL.String()),
			UpdatedAt:   model.StringPtr(firstOf(ro.UpdatedAt.String(), ro.CreatedAt.String())),
			Description: StripHTML(string(ro.Description)),
			JobTypes:    jobTypes,
			Remote:      bool(ro.Remote),
		})
	}
	return postings, nil
}
