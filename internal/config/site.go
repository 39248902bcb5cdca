package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SiteConfig tunes the public pages: listing sizes, party tabs and ad
// placements. Every field has a default, so the file is optional.
type SiteConfig struct {
	Feeds FeedLimits `yaml:"feeds"`
	// PartyTabs are the category tabs of a party page, "all" first.
	PartyTabs []string  `yaml:"party_tabs"`
	Ads       AdsConfig `yaml:"ads"`
}

// FeedLimits are the listing sizes of each page section.
type FeedLimits struct {
	Home     int `yaml:"home"`
	Featured int `yaml:"featured"`
	Ticker   int `yaml:"ticker"`
	Party    int `yaml:"party"`
	Related  int `yaml:"related"`
}

// AdsConfig describes the ad network script and the placements of each page.
type AdsConfig struct {
	Enabled    bool                   `yaml:"enabled"`
	ScriptURL  string                 `yaml:"script_url"`
	Client     string                 `yaml:"client"`
	Slot       string                 `yaml:"slot"`
	Format     string                 `yaml:"format"`
	Responsive bool                   `yaml:"responsive"`
	Pages      map[string][]Placement `yaml:"pages"`
}

// Placement is one ad container on a page.
type Placement struct {
	Name      string `yaml:"name"`
	MinHeight int    `yaml:"min_height"`
}

// DefaultSite returns the settings the site ships with.
func DefaultSite() *SiteConfig {
	return &SiteConfig{
		Feeds: FeedLimits{
			Home:     20,
			Featured: 3,
			Ticker:   5,
			Party:    30,
			Related:  4,
		},
		PartyTabs: []string{"all", "elections", "government", "statements", "protests"},
		Ads: AdsConfig{
			Enabled:    true,
			ScriptURL:  "https://pagead2.googlesyndication.com/pagead/js/adsbygoogle.js",
			Client:     "ca-pub-6592137877448044",
			Slot:       "auto",
			Format:     "auto",
			Responsive: true,
			Pages: map[string][]Placement{
				"party": {
					{Name: "top", MinHeight: 90},
					{Name: "sidebar", MinHeight: 250},
					{Name: "bottom", MinHeight: 90},
				},
				"article": {
					{Name: "top", MinHeight: 90},
					{Name: "inline", MinHeight: 250},
					{Name: "bottom", MinHeight: 90},
				},
			},
		},
	}
}

// LoadSiteConfig reads path over the defaults. An empty path returns the
// defaults. The path comes from the operator (SITE_CONFIG), not from requests.
func LoadSiteConfig(path string) (*SiteConfig, error) {
	cfg := DefaultSite()
	if path == "" {
		return cfg, nil
	}

	// #nosec G304 -- path is provided by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read site config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse site config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("site config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that every listing size is positive and that featured
// items fit in the home listing.
func (c *SiteConfig) Validate() error {
	f := c.Feeds
	for name, v := range map[string]int{
		"home": f.Home, "featured": f.Featured, "ticker": f.Ticker,
		"party": f.Party, "related": f.Related,
	} {
		if v <= 0 || v > 100 {
			return fmt.Errorf("feeds.%s must be between 1 and 100, got %d", name, v)
		}
	}
	if f.Featured > f.Home {
		return errors.New("feeds.featured cannot exceed feeds.home")
	}
	if len(c.PartyTabs) == 0 || c.PartyTabs[0] != "all" {
		return errors.New(`party_tabs must start with "all"`)
	}
	if c.Ads.Enabled && c.Ads.Client == "" {
		return errors.New("ads.client is required when ads are enabled")
	}
	return nil
}

// Placements returns the ad placements of page, or nil when ads are off.
func (c *SiteConfig) Placements(page string) []Placement {
	if !c.Ads.Enabled {
		return nil
	}
	return c.Ads.Pages[page]
}
