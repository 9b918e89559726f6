package adapter

import (
	"github.com/amishk599/liveroles/internal/model"
	"github.com/amishk599/liveroles/internal/transport"
)

// Credentials holds the API keys of the keyed providers. A blank key
// disables that provider.
type Credentials struct {
	AdzunaAppID  string
	AdzunaAppKey string
	JoobleAPIKey string
	Serp         SerpSettings
}

// Keyed is implemented by adapters that need credentials.
type Keyed interface {
	Enabled() bool
}

// Set is the adapter registry, one implementation per provider kind.
type Set map[model.ProviderKind]model.Adapter

// NewSet builds every adapter over one shared transport client.
func NewSet(client *transport.Client, creds Credentials) Set {
	adapters := []model.Adapter{
		NewGreenhouseAdapter(client),
		NewLeverAdapter(client),
		NewSmartRecruitersAdapter(client),
		NewTeamtailorAdapter(client),
		NewRecruiteeAdapter(client),
		NewAshbyAdapter(client),
		NewPersonioAdapter(client),
		NewStepstoneAdapter(client),
		NewArbeitnowAdapter(client),
		NewRemotiveAdapter(client),
		NewJobicyAdapter(client),
		NewAdzunaAdapter(client, creds.AdzunaAppID, creds.AdzunaAppKey),
		NewJoobleAdapter(client, creds.JoobleAPIKey),
		NewSerpGoogleJobsAdapter(client, creds.Serp),
		NewSerpJobBoardsAdapter(client, creds.Serp),
		NewSerpOfficialSitesAdapter(client, creds.Serp),
		NewOfficialPageAdapter(client),
	}
	set := make(Set, len(adapters))
	for _, a := range adapters {
		set[a.Kind()] = a
	}
	return set
}

// Available reports whether kind is registered and, for keyed providers,
// has its credentials.
func (s Set) Available(kind model.ProviderKind) bool {
	a, ok := s[kind]
	if !ok {
		return false
	}
	if k, ok := a.(Keyed); ok {
		return k.Enabled()
	}
	return true
}
