package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/amishk599/liveroles/internal/model"
	"github.com/amishk599/liveroles/internal/transport"
)

const adzunaBaseURL = "https://api.adzuna.com/v1/api/jobs"

type adzunaResult struct {
	Title       text `json:"title"`
	Description text `json:"description"`
	RedirectURL text `json:"redirect_url"`
	Created     text `json:"created"`
	Company     struct {
		DisplayName text `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName text `json:"display_name"`
	} `json:"location"`
	ContractTime text `json:"contract_time"`
}

// AdzunaAdapter searches the Adzuna API. Targets are (country, query) pairs.
// Without both an app id and key it contributes nothing.
type AdzunaAdapter struct {
	client *transport.Client
	appID  string
	appKey string
}

func NewAdzunaAdapter(client *transport.Client, appID, appKey string) *AdzunaAdapter {
	return &AdzunaAdapter{client: client, appID: appID, appKey: appKey}
}

func (a *AdzunaAdapter) Kind() model.ProviderKind { return model.KindAdzuna }

// Enabled reports whether credentials are present.
func (a *AdzunaAdapter) Enabled() bool { return a.appID != "" && a.appKey != "" }

func (a *AdzunaAdapter) Fetch(ctx context.Context, target model.Target) ([]model.Posting, error) {
	if !a.Enabled() {
		return nil, nil
	}
	params := url.Values{}
	params.Set("app_id", a.appID)
	params.Set("app_key", a.appKey)
	params.Set("results_per_page", "50")
	params.Set("what", target.ID)
	endpoint := fmt.Sprintf("%s/%s/search/1?%s", adzunaBaseURL, url.PathEscape(target.Country), params.Encode())

	var resp struct {
		Results []adzunaResult `json:"results"`
	}
	if err := a.client.GetJSON(ctx, string(a.Kind()), endpoint, &resp); err != nil {
		// The endpoint carries credentials; report only the target.
		return nil, fmt.Errorf("adzuna search for %s: request failed", target)
	}

	postings := make([]model.Posting, 0, len(resp.Results))
	for _, r := range resp.Results {
		var jobTypes []string
		if c := r.ContractTime.String(); c != "" {
			jobTypes = []string{c}
		}
		postings = append(postings, model.Posting{
			Source:      string(model.KindAdzuna),
			SourceNote:  "Query: " + target.ID,
			Company:     r.Company.DisplayName.String(),
			Title:       r.Title.String(),
			Location:    r.Location.DisplayName.String(),
			URL:         r.RedirectURL.String(),
			UpdatedAt:   model.StringPtr(r.Created.String()),
			Description: StripHTML(string(r.Description)),
			JobTypes:    jobTypes,
		})
	}
	return postings, nil
}

const joobleURLFormat = "https://%s.jooble.org/api/%s"

type joobleJob struct {
	Title    text `json:"title"`
	Company  text `json:"company"`
	Location text `json:"location"`
	Link     text `json:"link"`
	Updated  text `json:"updated"`
	Snippet  text `json:"snippet"`
	Type     text `json:"type"`
}

// JoobleAdapter searches the Jooble API. Targets are (country, query) pairs.
type JoobleAdapter struct {
	client *transport.Client
	apiKey string
}

func NewJoobleAdapter(client *transport.Client, apiKey string) *JoobleAdapter {
	return &JoobleAdapter{client: client, apiKey: apiKey}
}

func (a *JoobleAdapter) Kind() model.ProviderKind { return model.KindJooble }

func (a *JoobleAdapter) Enabled() bool { return a.apiKey != "" }

func (a *JoobleAdapter) Fetch(ctx context.Context, target model.Target) ([]model.Posting, error) {
	if !a.Enabled() {
		return nil, nil
	}
	country := strings.ToUpper(target.Country)
	endpoint := fmt.Sprintf(joobleURLFormat, url.PathEscape(target.Country), url.PathEscape(a.apiKey))
	payload := map[string]string{"keywords": target.ID, "location": country}

	var resp struct {
		Jobs []joobleJob `json:"jobs"`
	}
	if err := a.client.PostJSON(ctx, string(a.Kind()), endpoint, payload, &resp); err != nil {
		return nil, fmt.Errorf("jooble search for %s: request failed", target)
	}

	postings := make([]model.Posting, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		var jobTypes []string
		if t := j.Type.String(); t != "" {
			jobTypes = []string{t}
		}
		postings = append(postings, model.Posting{
			Source:      string(model.KindJooble),
			SourceNote:  "Query: " + target.ID,
			Company:     j.Company.String(),
			Title:       StripHTML(j.Title.String()),
			Location:    firstOf(j.Location.String(), country),
			URL:         j.Link.String(),
			UpdatedAt:   model.StringPtr(j.Updated.String()),
			Description: StripHTML(string(j.Snippet)),
			JobTypes:    jobTypes,
		})
	}
	return postings, nil
}
