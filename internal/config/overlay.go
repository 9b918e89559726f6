package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/liveroles/internal/model"
)

// OverlaySchemaVersion tags the runtime provider overlay.
const OverlaySchemaVersion = "roles-kit-runtime.v1"

// HugoOverlaySchemaVersion is the hugo-live-roles overlay tag. Its layout is
// identical, so it is read as the current version.
const HugoOverlaySchemaVersion = "hugo-live-roles-runtime.v0.1"

// DefaultProviderCountries is used for Adzuna and Jooble when the overlay
// names none.
var DefaultProviderCountries = []string{"de", "fr", "nl", "at", "be", "in"}

// Overlay is the optional runtime provider file: extra seed sources and
// regional defaults per provider.
type Overlay struct {
	SchemaVersion string            `yaml:"schema_version"`
	Providers     ProviderDefaults  `yaml:"providers"`
	ExtraSources  model.SourceLists `yaml:"extra_sources"`
}

// ProviderDefaults are regional settings for search and aggregator providers.
type ProviderDefaults struct {
	SerpGL          string   `yaml:"serpapi_gl"`
	SerpHL          string   `yaml:"serpapi_hl"`
	AdzunaCountries []string `yaml:"adzuna_countries"`
	JoobleCountries []string `yaml:"jooble_countries"`
}

// LoadOverlay reads the overlay at path. A missing, unparseable or
// wrong-version file yields the defaults and ok=false; it is never an error.
func LoadOverlay(path string) (ov Overlay, ok bool) {
	defaults := Overlay{SchemaVersion: OverlaySchemaVersion}.withDefaults()
	if path == "" {
		return defaults, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return defaults, false
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &ov); err != nil {
		return defaults, false
	}
	switch ov.SchemaVersion {
	case OverlaySchemaVersion:
	case HugoOverlaySchemaVersion:
		ov.SchemaVersion = OverlaySchemaVersion
	default:
		return defaults, false
	}
	return ov.withDefaults(), true
}

func (o Overlay) withDefaults() Overlay {
	o.Providers.SerpGL = strings.ToLower(firstNonEmpty(o.Providers.SerpGL, "de"))
	o.Providers.SerpHL = strings.ToLower(firstNonEmpty(o.Providers.SerpHL, "en"))
	o.Providers.AdzunaCountries = countries(o.Providers.AdzunaCountries)
	o.Providers.JoobleCountries = countries(o.Providers.JoobleCountries)
	return o
}

func countries(list []string) []string {
	if len(list) == 0 {
		list = DefaultProviderCountries
	}
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, strings.ToLower(strings.TrimSpace(c)))
	}
	return Unique(out)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
