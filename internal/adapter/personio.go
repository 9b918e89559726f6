package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/amishk599/liveroles/internal/model"
	"github.com/amishk599/liveroles/internal/transport"
)

type personioPosition struct {
	ID                 feedText `xml:"id"`
	Name               feedText `xml:"name"`
	Title              feedText `xml:"title"`
	Company            feedText `xml:"company"`
	Office             feedText `xml:"office"`
	City               feedText `xml:"city"`
	Country            feedText `xml:"country"`
	URL                feedText `xml:"url"`
	ApplicationFormURL feedText `xml:"application-form-url"`
	OccupationDate     feedText `xml:"occupationDate"`
	CreatedAt          feedText `xml:"createdAt"`
	UpdatedAt          feedText `xml:"updatedAt"`
	Schedule           feedText `xml:"schedule"`
	Description        feedText `xml:"description"`
	JobDescriptions    []struct {
		Name  feedText `xml:"name"`
		Value feedText `xml:"value"`
	} `xml:"jobDescriptions>jobDescription"`
}

type personioFeed struct {
	Positions []personioPosition `xml:"position"`
}

// PersonioAdapter reads a Personio XML job feed; the target is the feed URL.
type PersonioAdapter struct {
	client *transport.Client
}

func NewPersonioAdapter(client *transport.Client) *PersonioAdapter {
	return &PersonioAdapter{client: client}
}

func (a *PersonioAdapter) Kind() model.ProviderKind { return model.KindPersonio }

func (a *PersonioAdapter) Fetch(ctx context.Context, target model.Target) ([]model.Posting, error) {
	body, err := a.client.GetText(ctx, string(a.Kind()), target.ID, transport.AcceptXML)
	if err != nil {
		return nil, fmt.Errorf("personio fetch for %s: %w", target.ID, err)
	}

	var feed personioFeed
	if err := decodeFeed(body, &feed); err != nil {
		return nil, fmt.Errorf("personio parse for %s: %w", target.ID, err)
	}

	host := hostOf(target.ID)
	if host == "" {
		host = "personio"
	}

	postings := make([]model.Posting, 0, len(feed.Positions))
	for _, p := range feed.Positions {
		url := firstOf(p.URL.String(), p.ApplicationFormURL.String())
		if url == "" && p.ID.String() != "" && host != "personio" {
			url = fmt.Sprintf("https://%s/job/%s", host, p.ID.String())
		}

		var jobTypes []string
		if s := p.Schedule.String(); s != "" {
			jobTypes = []string{s}
		}

		postings = append(postings, model.Posting{
			Source:      string(model.KindPersonio),
			SourceNote:  "Source: " + host,
			Company:     firstOf(p.Company.String(), host),
			Title:       firstOf(p.Name.String(), p.Title.String()),
			Location:    joinNonEmpty(", ", p.Office.String(), p.City.String(), p.Country.String()),
			URL:         url,
			UpdatedAt:   model.StringPtr(firstOf(p.OccupationDate.String(), p.CreatedAt.String(), p.UpdatedAt.String())),
			Description: personioDescription(p),
			JobTypes:    jobTypes,
		})
	}
	return postings, nil
}

func personioDescription(p personioPosition) string {
	if len(p.JobDescriptions) == 0 {
		return StripHTML(p.Description.String())
	}
	parts := make([]string, 0, len(p.JobDescriptions)*2)
	for _, jd := range p.JobDescriptions {
		parts = append(parts, jd.Name.String(), jd.Value.String())
	}
	return StripHTML(strings.Join(parts, " "))
}
