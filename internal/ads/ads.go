// Package ads describes the ad network placements of each page and records
// placement failures. Failures are logged and counted, never retried and
// never shown to readers.
package ads

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"amazetimes/internal/config"
	"amazetimes/internal/i18n"
	"amazetimes/internal/observability/logging"
	"amazetimes/internal/observability/metrics"
)

// maxMessageLength bounds the client-reported error text kept in logs.
const maxMessageLength = 500

// Slot is one ad container the page should render and ask the network to fill.
type Slot struct {
	Name       string `json:"name"`
	Client     string `json:"data_ad_client"`
	Slot       string `json:"data_ad_slot"`
	Format     string `json:"data_ad_format"`
	Responsive bool   `json:"data_full_width_responsive"`
	MinHeight  int    `json:"min_height"`
	Label      string `json:"label"`
}

// Manifest is what a page needs to load ads: the script, injected once, and
// its slots.
type Manifest struct {
	Enabled   bool   `json:"enabled"`
	ScriptURL string `json:"script_url,omitempty"`
	Slots     []Slot `json:"slots"`
}

// Failure is a placement that did not fill, as reported by the page.
type Failure struct {
	Page      string `json:"page"`
	Placement string `json:"placement"`
	Message   string `json:"message"`
}

// Service serves manifests from the site configuration.
type Service struct {
	cfg    *config.SiteConfig
	logger *slog.Logger
}

// NewService creates a Service.
func NewService(cfg *config.SiteConfig, logger *slog.Logger) *Service {
	if cfg == nil {
		cfg = config.DefaultSite()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cfg: cfg, logger: logger}
}

// Manifest returns the slots of page. Pages without placements, or a site
// with ads disabled, get an empty manifest.
func (s *Service) Manifest(r i18n.Resolver, page string) Manifest {
	placements := s.cfg.Placements(page)
	m := Manifest{Enabled: len(placements) > 0, Slots: []Slot{}}
	if !m.Enabled {
		return m
	}
	ads := s.cfg.Ads
	m.ScriptURL = ads.ScriptURL + "?client=" + ads.Client
	for _, p := range placements {
		m.Slots = append(m.Slots, Slot{
			Name:       p.Name,
			Client:     ads.Client,
			Slot:       ads.Slot,
			Format:     ads.Format,
			Responsive: ads.Responsive,
			MinHeight:  p.MinHeight,
			Label:      r.Message(i18n.MsgAdvertisement),
		})
	}
	return m
}

// ReportFailure logs and counts a failed placement. It never fails.
func (s *Service) ReportFailure(ctx context.Context, f Failure) {
	msg := f.Message
	if utf8.RuneCountInString(msg) > maxMessageLength {
		msg = string([]rune(msg)[:maxMessageLength])
	}
	metrics.RecordAdPlacementFailure(f.Page)
	logging.ForRequest(ctx, s.logger).Warn("ad placement failed",
		slog.String("page", f.Page),
		slog.String("placement", f.Placement),
		slog.String("message", msg))
}
