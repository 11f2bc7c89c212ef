package domain

import (
	"strings"
	"time"
)

// SettingsID is the fixed document id of the process-wide settings singleton.
const SettingsID = "global-settings"

// RemoteCredentials locate the remote replica store.
type RemoteCredentials struct {
	Endpoint  string `json:"endpoint,omitempty"`
	AccessKey string `json:"access_key,omitempty"`
}

// SMTPConfig holds outbound mail settings. Email dispatch is a no-op while
// Enabled is false or the host is empty.
type SMTPConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host,omitempty"`
	Port     int    `json:"port,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	From     string `json:"from,omitempty"`
}

// AgingThresholds classify lead freshness in days since last contact.
type AgingThresholds struct {
	WarmDays int `json:"warm_days"`
	ColdDays int `json:"cold_days"`
}

// TeamThresholds flag team members whose funnel is running dry.
type TeamThresholds struct {
	MinActiveLeads     int `json:"min_active_leads"`
	MinScheduledVisits int `json:"min_scheduled_visits"`
}

// SystemSettings is the global configuration singleton. It is not a
// collection: it lives under the fixed id SettingsID in the remote store.
type SystemSettings struct {
	ID                      string            `json:"id"`
	RequirePropertyApproval bool              `json:"require_property_approval"`
	PropertyTypes           []string          `json:"property_types,omitempty"`
	PropertyFeatures        []string          `json:"property_features,omitempty"`
	LeadSources             []string          `json:"lead_sources,omitempty"`
	Locations               []string          `json:"locations,omitempty"`
	PromptTemplates         map[string]string `json:"prompt_templates,omitempty"`
	EmailTemplates          map[string]string `json:"email_templates,omitempty"`
	SMTP                    SMTPConfig        `json:"smtp"`
	WebhookURL              string            `json:"webhook_url,omitempty"`
	Remote                  RemoteCredentials `json:"remote"`
	LeadAging               AgingThresholds   `json:"lead_aging"`
	TeamPerformance         TeamThresholds    `json:"team_performance"`
	Version                 int64             `json:"version"`
	UpdatedAt               time.Time         `json:"updated_at"`
}

// DefaultSettings returns the settings used before anything is persisted.
func DefaultSettings() SystemSettings {
	return SystemSettings{
		ID:                      SettingsID,
		RequirePropertyApproval: true,
		PropertyTypes:           []string{"apartment", "house", "land", "commercial"},
		LeadSources:             []string{"website", "referral", "portal", "walk-in"},
		EmailTemplates: map[string]string{
			"propertyApproved": "Olá {{ownerName}}, o seu imóvel \"{{propertyTitle}}\" foi aprovado e está publicado.",
		},
		LeadAging:       AgingThresholds{WarmDays: 7, ColdDays: 21},
		TeamPerformance: TeamThresholds{MinActiveLeads: 5, MinScheduledVisits: 1},
	}
}

// RenderTemplate substitutes {{placeholder}} occurrences in the named email
// template. An unknown template renders as the empty string.
func (s *SystemSettings) RenderTemplate(name string, vars map[string]string) string {
	tpl, ok := s.EmailTemplates[name]
	if !ok {
		return ""
	}
	for k, v := range vars {
		tpl = strings.ReplaceAll(tpl, "{{"+k+"}}", v)
	}
	return tpl
}
