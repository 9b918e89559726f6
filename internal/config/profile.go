package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/liveroles/internal/model"
)

// profileExtensions is the lookup order for profile files.
var profileExtensions = []string{".yml", ".yaml", ".json"}

// LoadProfile reads profile id from dir, trying each extension in order.
// The first file that exists must parse and validate.
func LoadProfile(dir, id string) (*model.RoleProfile, error) {
	for _, ext := range profileExtensions {
		path := filepath.Join(dir, id+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read profile: %w", err)
		}

		var p model.RoleProfile
		if ext == ".json" {
			err = json.Unmarshal(data, &p)
		} else {
			err = yaml.Unmarshal(data, &p)
		}
		if err != nil {
			return nil, fmt.Errorf("parse profile %s: %w", path, err)
		}
		if err := ValidateProfile(&p); err != nil {
			return nil, fmt.Errorf("profile %s: %w", path, err)
		}
		return &p, nil
	}
	return nil, fmt.Errorf("profile %q not found in %s (tried .yml, .yaml, .json)", id, dir)
}

// ValidateProfile checks required fields, bucket id uniqueness and that
// every regex pattern compiles.
func ValidateProfile(p *model.RoleProfile) error {
	if err := validator.New().Struct(p); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}

	seen := make(map[string]bool, len(p.Buckets))
	for _, b := range p.Buckets {
		if seen[b.ID] {
			return fmt.Errorf("duplicate bucket id %q", b.ID)
		}
		seen[b.ID] = true
	}

	groups := map[string][]string{
		"geo_allow_patterns":    p.GeoAllowPatterns,
		"geo_priority_patterns": p.GeoPriorityPatterns,
		"geo_exclude_patterns":  p.GeoExcludePatterns,
	}
	for _, b := range p.Buckets {
		groups["buckets."+b.ID+".include_title_patterns"] = b.IncludeTitlePatterns
		groups["buckets."+b.ID+".include_text_patterns"] = b.IncludeTextPatterns
		groups["buckets."+b.ID+".exclude_text_patterns"] = b.ExcludeTextPatterns
	}
	for field, patterns := range groups {
		for _, pattern := range patterns {
			if _, err := regexp.Compile("(?i)" + pattern); err != nil {
				return fmt.Errorf("%s: invalid pattern %q: %w", field, pattern, err)
			}
		}
	}
	return nil
}
