package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/amishk599/liveroles/internal/model"
	"github.com/amishk599/liveroles/internal/transport"
)

// Keyless public boards. Each serves one global listing, so the target is ignored.
const (
	arbeitnowURL = "https://www.arbeitnow.com/api/job-board-api"
	remotiveURL  = "https://remotive.com/api/remote-jobs"
	jobicyURL    = "https://jobicy.com/api/v2/remote-jobs"
)

type arbeitnowJob struct {
	CompanyName text   `json:"company_name"`
	Title       text   `json:"title"`
	Location    text   `json:"location"`
	URL         text   `json:"url"`
	CreatedAt   text   `json:"created_at"` // unix seconds
	Description text   `json:"description"`
	JobTypes    []text `json:"job_types"`
	Remote      flag   `json:"remote"`
}

// ArbeitnowAdapter fetches the Arbeitnow job board API.
type ArbeitnowAdapter struct {
	client *transport.Client
}

func NewArbeitnowAdapter(client *transport.Client) *ArbeitnowAdapter {
	return &ArbeitnowAdapter{client: client}
}

func (a *ArbeitnowAdapter) Kind() model.ProviderKind { return model.KindArbeitnow }

func (a *ArbeitnowAdapter) Fetch(ctx context.Context, _ model.Target) ([]model.Posting, error) {
	var resp struct {
		Data []arbeitnowJob `json:"data"`
	}
	if err := a.client.GetJSON(ctx, string(a.Kind()), arbeitnowURL, &resp); err != nil {
		return nil, fmt.Errorf("arbeitnow fetch: %w", err)
	}

	postings := make([]model.Posting, 0, len(resp.Data))
	for _, j := range resp.Data {
		jobTypes := make([]string, 0, len(j.JobTypes))
		for _, t := range j.JobTypes {
			if s := t.String(); s != "" {
				jobTypes = append(jobTypes, s)
			}
		}
		postings = append(postings, model.Posting{
			Source:      string(model.KindArbeitnow),
			Company:     j.CompanyName.String(),
			Title:       j.Title.String(),
			Location:    j.Location.String(),
			URL:         j.URL.String(),
			UpdatedAt:   model.StringPtr(unixSecondsOrRaw(j.CreatedAt.String())),
			Description: StripHTML(string(j.Description)),
			JobTypes:    jobTypes,
			Remote:      bool(j.Remote),
		})
	}
	return postings, nil
}

// unixSecondsOrRaw renders a numeric Unix timestamp as RFC 3339 and passes
// anything else through unchanged.
func unixSecondsOrRaw(s string) string {
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil || secs <= 0 {
		return s
	}
	return time.Unix(secs, 0).UTC().Format(time.RFC3339)
}

type remotiveJob struct {
	CompanyName               text `json:"company_name"`
	Title                     text `json:"title"`
	CandidateRequiredLocation text `json:"candidate_required_location"`
	URL                       text `json:"url"`
	PublicationDate           text `json:"publication_date"`
	Description               text `json:"description"`
	JobType                   text `json:"job_type"`
}

// RemotiveAdapter fetches the Remotive remote-jobs API.
type RemotiveAdapter struct {
	client *transport.Client
}

func NewRemotiveAdapter(client *transport.Client) *RemotiveAdapter {
	return &RemotiveAdapter{client: client}
}

func (a *RemotiveAdapter) Kind() model.ProviderKind { return model.KindRemotive }

func (a *RemotiveAdapter) Fetch(ctx context.Context, _ model.Target) ([]model.Posting, error) {
	var resp struct {
		Jobs []remotiveJob `json:"jobs"`
	}
	if err := a.client.GetJSON(ctx, string(a.Kind()), remotiveURL, &resp); err != nil {
		return nil, fmt.Errorf("remotive fetch: %w", err)
	}

	postings := make([]model.Posting, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		var jobTypes []string
		if t := j.JobType.String(); t != "" {
			jobTypes = []string{t}
		}
		postings = append(postings, model.Posting{
			Source:      string(model.KindRemotive),
			Company:     j.CompanyName.String(),
			Title:       j.Title.String(),
			Location:    j.CandidateRequiredLocation.String(),
			URL:         j.URL.String(),
			UpdatedAt:   model.StringPtr(j.PublicationDate.String()),
			Description: StripHTML(string(j.Description)),
			JobTypes:    jobTypes,
			Remote:      true,
		})
	}
	return postings, nil
}

type jobicyJob struct {
	CompanyName    text `json:"companyName"`
	Company        text `json:"company"`
	JobTitle       text `json:"jobTitle"`
	Title          text `json:"title"`
	JobGeo         text `json:"jobGeo"`
	Location       text `json:"location"`
	URL            text `json:"url"`
	JobURL         text `json:"jobUrl"`
	PubDate        text `json:"pubDate"`
	PublishedAt    text `json:"publishedAt"`
	JobDescription text `json:"jobDescription"`
	Description    text `json:"description"`
}

// JobicyAdapter fetches the Jobicy remote-jobs API.
type JobicyAdapter struct {
	client *transport.Client
}

func NewJobicyAdapter(client *transport.Client) *JobicyAdapter {
	return &JobicyAdapter{client: client}
}

func (a *JobicyAdapter) Kind() model.ProviderKind { return model.KindJobicy }

func (a *JobicyAdapter) Fetch(ctx context.Context, _ model.Target) ([]model.Posting, error) {
	var raw json.RawMessage
	if err := a.client.GetJSON(ctx, string(a.Kind()), jobicyURL, &raw); err != nil {
		return nil, fmt.Errorf("jobicy fetch: %w", err)
	}

	jobs := list[jobicyJob](raw, "jobs")
	postings := make([]model.Posting, 0, len(jobs))
	for _, j := range jobs {
		postings = append(postings, model.Posting{
			Source:      string(model.KindJobicy),
			Company:     firstOf(j.CompanyName.String(), j.Company.String()),
			Title:       firstOf(j.JobTitle.String(), j.Title.String()),
			Location:    firstOf(j.JobGeo.String(), j.Location.String()),
			URL:         firstOf(j.URL.String(), j.JobURL.String()),
			UpdatedAt:   model.StringPtr(firstOf(j.PubDate.String(), j.PublishedAt.String())),
			Description: StripHTML(firstOf(string(j.JobDescription), string(j.Description))),
			Remote:      true,
		})
	}
	return postings, nil
}
