package venues

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrUnknownVenue is returned by Lookup for a name not in the catalog.
var ErrUnknownVenue = errors.New("unknown venue")

// Profile is the per-venue configuration. Zero values fall back to the reconcile defaults.
type Profile struct {
	Name     string `yaml:"name" json:"name"`
	Timezone string `yaml:"timezone" json:"timezone"`
	// ListingEndpoint overrides listing.endpoint for this venue.
	ListingEndpoint string `yaml:"listing_endpoint" json:"listing_endpoint,omitempty"`
	// InventoryVenue is the venue name the inventory API expects, when it differs from Name.
	InventoryVenue string        `yaml:"inventory_venue" json:"inventory_venue,omitempty"`
	FuzzyThreshold int           `yaml:"fuzzy_threshold" json:"fuzzy_threshold,omitempty"`
	Tolerance      time.Duration `yaml:"tolerance" json:"tolerance,omitempty"`
	// SkipDays is a pointer so an explicit 0 can be told apart from unset.
	SkipDays      *int `yaml:"skip_days" json:"skip_days,omitempty"`
	LookaheadDays int  `yaml:"lookahead_days" json:"lookahead_days,omitempty"`
	// ExactTime overrides reconcile.exact_time in either direction when set.
	ExactTime *bool    `yaml:"exact_time" json:"exact_time,omitempty"`
	Active    *bool    `yaml:"active" json:"active"`
	Keywords  []string `yaml:"keywords" json:"keywords,omitempty"`
}

// IsActive reports whether the venue is crawled; profiles are active unless disabled.
func (p Profile) IsActive() bool {
	return p.Active == nil || *p.Active
}

// InventoryName is the venue name sent to the inventory API.
func (p Profile) InventoryName() string {
	if p.InventoryVenue != "" {
		return p.InventoryVenue
	}
	return p.Name
}

// Location loads the venue timezone, falling back to def when unset.
func (p Profile) Location(def string) (*time.Location, error) {
	tz := p.Timezone
	if tz == "" {
		tz = def
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("venue %s: invalid timezone %q: %w", p.Name, tz, err)
	}
	return loc, nil
}

// Catalog is the full list of venues.
type Catalog struct {
	Venues []Profile `yaml:"venues"`
}

// Parse decodes and validates a yaml catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode venue catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(c.Venues))
	for i, v := range c.Venues {
		name := strings.TrimSpace(v.Name)
		if name == "" {
			return nil, fmt.Errorf("venue #%d has no name", i+1)
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("venue %q is listed twice", name)
		}
		seen[key] = struct{}{}

		if v.FuzzyThreshold < 0 || v.FuzzyThreshold > 100 {
			return nil, fmt.Errorf("venue %s: fuzzy_threshold %d out of range 0-100", name, v.FuzzyThreshold)
		}
		if v.Timezone != "" {
			if _, err := time.LoadLocation(v.Timezone); err != nil {
				return nil, fmt.Errorf("venue %s: invalid timezone %q", name, v.Timezone)
			}
		}
		c.Venues[i].Name = name
	}
	return &c, nil
}

// Lookup finds a venue by name, ignoring case.
func (c *Catalog) Lookup(name string) (Profile, error) {
	for _, v := range c.Venues {
		if strings.EqualFold(v.Name, strings.TrimSpace(name)) {
			return v, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %s", ErrUnknownVenue, name)
}

// Active returns the venues that are crawled, in catalog order.
func (c *Catalog) Active() []Profile {
	var out []Profile
	for _, v := range c.Venues {
		if v.IsActive() {
			out = append(out, v)
		}
	}
	return out
}
