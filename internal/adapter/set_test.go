package adapter

import (
	"testing"

	"github.com/amishk599/liveroles/internal/model"
)

func TestNewSet_RegistersEveryKind(t *testing.T) {
	set := NewSet(nil, Credentials{})
	kinds := []model.ProviderKind{
		model.KindGreenhouse, model.KindLever, model.KindSmartRecruiters, model.KindTeamtailor,
		model.KindRecruitee, model.KindAshby, model.KindPersonio, model.KindStepstone,
		model.KindArbeitnow, model.KindRemotive, model.KindJobicy, model.KindAdzuna,
		model.KindJooble, model.KindSerpGoogleJobs, model.KindSerpJobBoards,
		model.KindSerpOfficialSites, model.KindOfficialJSONLD,
	}
	if len(set) != len(kinds) {
		t.Errorf("expected %d adapters, got %d", len(kinds), len(set))
	}
	for _, k := range kinds {
		a, ok := set[k]
		if !ok {
			t.Errorf("missing adapter for %s", k)
			continue
		}
		if a.Kind() != k {
			t.Errorf("adapter registered under %s reports %s", k, a.Kind())
		}
	}
}

func TestSet_Available(t *testing.T) {
	without := NewSet(nil, Credentials{})
	if !without.Available(model.KindGreenhouse) {
		t.Error("keyless provider should always be available")
	}
	for _, k := range []model.ProviderKind{model.KindAdzuna, model.KindJooble, model.KindSerpGoogleJobs} {
		if without.Available(k) {
			t.Errorf("%s should be unavailable without credentials", k)
		}
	}

	with := NewSet(nil, Credentials{
		AdzunaAppID:  "id",
		AdzunaAppKey: "key",
		JoobleAPIKey: "key",
		Serp:         SerpSettings{APIKey: "key"},
	})
	for _, k := range []model.ProviderKind{model.KindAdzuna, model.KindJooble, model.KindSerpGoogleJobs, model.KindSerpOfficialSites} {
		if !with.Available(k) {
			t.Errorf("%s should be available with credentials", k)
		}
	}
	if with.Available("unknown") {
		t.Error("unknown provider should be unavailable")
	}
}
