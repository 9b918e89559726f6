// Package registry persists the source registry and grows it with
// discovered sources.
package registry

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/amishk599/liveroles/internal/datafile"
	"github.com/amishk599/liveroles/internal/model"
)

// DefaultMaxProbeCandidates applies when the registry does not set one.
const DefaultMaxProbeCandidates = 80

// rawRegistry distinguishes absent meta values from explicit ones.
type rawRegistry struct {
	GeneratedAt string            `json:"generated_at" yaml:"generated_at"`
	Explicit    model.SourceLists `json:"explicit" yaml:"explicit"`
	Discovered  model.SourceLists `json:"discovered" yaml:"discovered"`
	Meta        struct {
		DiscoveryEnabled   *bool `json:"discovery_enabled" yaml:"discovery_enabled"`
		MaxProbeCandidates *int  `json:"max_probe_candidates" yaml:"max_probe_candidates"`
	} `json:"meta" yaml:"meta"`
}

// Empty returns a registry with no sources and discovery enabled.
func Empty(now time.Time) model.SourceRegistry {
	return model.SourceRegistry{
		GeneratedAt: model.FormatTimestamp(now),
		Explicit:    emptyLists(model.SourceLists{}),
		Discovered:  emptyLists(model.SourceLists{}),
		Meta: model.RegistryMeta{
			DiscoveryEnabled:   true,
			MaxProbeCandidates: DefaultMaxProbeCandidates,
		},
	}
}

// Load reads the registry at path. It never fails: a missing or unreadable
// file yields an empty registry.
func Load(path string, now time.Time, logger *slog.Logger) model.SourceRegistry {
	var raw rawRegistry
	if err := datafile.Read(path, &raw); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("registry unreadable, starting empty", "path", path, "error", err)
		}
		return Empty(now)
	}

	reg := model.SourceRegistry{
		GeneratedAt: raw.GeneratedAt,
		Explicit:    emptyLists(raw.Explicit),
		Discovered:  emptyLists(raw.Discovered),
		Meta: model.RegistryMeta{
			DiscoveryEnabled:   true,
			MaxProbeCandidates: DefaultMaxProbeCandidates,
		},
	}
	if reg.GeneratedAt == "" {
		reg.GeneratedAt = model.FormatTimestamp(now)
	}
	if raw.Meta.DiscoveryEnabled != nil {
		reg.Meta.DiscoveryEnabled = *raw.Meta.DiscoveryEnabled
	}
	if raw.Meta.MaxProbeCandidates != nil {
		reg.Meta.MaxProbeCandidates = *raw.Meta.MaxProbeCandidates
	}
	return reg
}

// Save writes the registry to path as JSON or YAML by extension.
func Save(path string, reg model.SourceRegistry) error {
	return datafile.Write(path, reg)
}

// Limits bounds one accumulation.
type Limits struct {
	MaxAdds            int  // new entries per category
	DiscoveryEnabled   bool // config-level switch
	MaxProbeCandidates int  // config-level cap
}

// Accumulate returns a copy of reg with found merged into its discovered
// lists. Lists keep their order and only grow; each category gains at most
// MaxAdds new entries. Stepstone feeds are never discovered.
func Accumulate(reg model.SourceRegistry, found model.SourceLists, limits Limits, now time.Time) model.SourceRegistry {
	next := reg
	next.GeneratedAt = model.FormatTimestamp(now)
	for _, c := range model.Categories {
		if c == model.CategoryStepstoneFeeds {
			continue
		}
		next.Discovered = next.Discovered.With(c, AddDiscovered(reg.Discovered.Get(c), found.Get(c), limits.MaxAdds))
	}
	next.Meta = model.RegistryMeta{
		DiscoveryEnabled:   limits.DiscoveryEnabled && reg.Meta.DiscoveryEnabled,
		MaxProbeCandidates: ProbeBudget(reg.Meta.MaxProbeCandidates, limits.MaxProbeCandidates),
	}
	return next
}

// AddDiscovered appends incoming entries missing from existing, stopping
// after maxAdds additions. existing is not modified.
func AddDiscovered(existing, incoming []string, maxAdds int) []string {
	seen := make(map[string]bool, len(existing)+len(incoming))
	out := make([]string, 0, len(existing)+min(len(incoming), max(0, maxAdds)))
	for _, s := range existing {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	adds := 0
	for _, s := range incoming {
		if adds >= maxAdds {
			break
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
		adds++
	}
	return out
}

// ProbeBudget is the smaller of the two caps, at least 1.
func ProbeBudget(registryCap, configCap int) int {
	return max(1, min(registryCap, configCap))
}

func emptyLists(l model.SourceLists) model.SourceLists {
	for _, c := range model.Categories {
		if l.Get(c) == nil {
			l = l.With(c, []string{})
		}
	}
	return l
}
