package adapter

import (
	"context"
	"fmt"

	"github.com/amishk599/liveroles/internal/model"
	"github.com/amishk599/liveroles/internal/transport"
)

type rssItem struct {
	Title       feedText `xml:"title"`
	Link        feedText `xml:"link"`
	Description feedText `xml:"description"`
	PubDate     feedText `xml:"pubDate"`
	Company     feedText `xml:"company"`
	Author      feedText `xml:"author"`
	Location    feedText `xml:"location"`
	City        feedText `xml:"city"`
}

// rssFeed accepts items under <channel> (RSS 2.0) or directly under the root.
type rssFeed struct {
	ChannelItems []rssItem `xml:"channel>item"`
	Items        []rssItem `xml:"item"`
}

// StepstoneAdapter reads a StepStone RSS job feed; the target is the feed URL.
type StepstoneAdapter struct {
	client *transport.Client
}

func NewStepstoneAdapter(client *transport.Client) *StepstoneAdapter {
	return &StepstoneAdapter{client: client}
}

func (a *StepstoneAdapter) Kind() model.ProviderKind { return model.KindStepstone }

func (a *StepstoneAdapter) Fetch(ctx context.Context, target model.Target) ([]model.Posting, error) {
	body, err := a.client.GetText(ctx, string(a.Kind()), target.ID, transport.AcceptRSS)
	if err != nil {
		return nil, fmt.Errorf("stepstone fetch for %s: %w", target.ID, err)
	}

	var feed rssFeed
	if err := decodeFeed(body, &feed); err != nil {
		return nil, fmt.Errorf("stepstone parse for %s: %w", target.ID, err)
	}

	host := hostOf(target.ID)
	if host == "" {
		host = "stepstone"
	}
	source := fmt.Sprintf("%s:%s", model.KindStepstone, host)

	items := append(feed.ChannelItems, feed.Items...)
	postings := make([]model.Posting, 0, len(items))
	for _, it := range items {
		postings = append(postings, model.Posting{
			Source:      source,
			Company:     firstOf(it.Company.String(), it.Author.String(), "stepstone"),
			Title:       it.Title.String(),
			Location:    firstOf(it.Location.String(), it.City.String()),
			URL:         it.Link.String(),
			UpdatedAt:   model.StringPtr(it.PubDate.String()),
			Description: StripHTML(it.Description.String()),
		})
	}
	return postings, nil
}
