package adapter

import (
	"context"
	"fmt"

	"github.com/amishk599/liveroles/internal/model"
	"github.com/amishk599/liveroles/internal/transport"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// greenhouseJob represents a single job in the Greenhouse API response.
type greenhouseJob struct {
	Title       text `json:"title"`
	AbsoluteURL text `json:"absolute_url"`
	UpdatedAt   text `json:"updated_at"`
	Content     text `json:"content"` // entity-encoded HTML
	Location    struct {
		Name text `json:"name"`
	} `json:"location"`
}

// greenhouseResponse is the top-level Greenhouse jobs API response.
type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// GreenhouseAdapter fetches jobs from the Greenhouse public boards API.
type GreenhouseAdapter struct {
	client *transport.Client
}

// NewGreenhouseAdapter creates a Greenhouse adapter; the target is the board token.
func NewGreenhouseAdapter(client *transport.Client) *GreenhouseAdapter {
	return &GreenhouseAdapter{client: client}
}

func (a *GreenhouseAdapter) Kind() model.ProviderKind { return model.KindGreenhouse }

// Fetch retrieves all jobs on the board, with content, and normalizes them.
func (a *GreenhouseAdapter) Fetch(ctx context.Context, target model.Target) ([]model.Posting, error) {
	url := fmt.Sprintf("%s/%s/jobs?content=true", greenhouseBaseURL, target.ID)

	var resp greenhouseResponse
	if err := a.client.GetJSON(ctx, string(a.Kind()), url, &resp); err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", target.ID, err)
	}

	postings := make([]model.Posting, 0, len(resp.Jobs))
	for _, gj := range resp.Jobs {
		postings = append(postings, model.Posting{
			Source:      string(model.KindGreenhouse),
			Company:     target.ID,
			Title:       gj.Title.String(),
			Location:    gj.Location.Name.String(),
			URL:         gj.AbsoluteURL.String(),
			UpdatedAt:   model.StringPtr(gj.UpdatedAt.String()),
			Description: PlainText(string(gj.Content)),
		})
	}
	return postings, nil
}
