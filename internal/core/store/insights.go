package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/imoview/realty-crm/internal/core/domain"
)

// MatchResult is the structured answer of the lead/property scoring prompt.
type MatchResult struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

const descriptionFallback = "Description unavailable right now. Please write one manually."

// GenerateListingDescription asks the text service for a listing description.
// The service is treated as unreliable: any failure yields a readable
// fallback string, never an error surfaced to the caller.
func (s *Store) GenerateListingDescription(ctx context.Context, propertyID string) string {
	p, ok := s.Property(propertyID)
	if !ok || s.textgen == nil {
		return descriptionFallback
	}

	tpl := s.Settings().PromptTemplates["listingDescription"]
	if tpl == "" {
		tpl = "Write a short, appealing real-estate listing description for: %s, %s, %s, price %.0f."
		tpl = fmt.Sprintf(tpl, p.Title, p.Type, p.Location, p.Price)
	} else {
		tpl = strings.ReplaceAll(tpl, "{{title}}", p.Title)
		tpl = strings.ReplaceAll(tpl, "{{type}}", p.Type)
		tpl = strings.ReplaceAll(tpl, "{{location}}", p.Location)
	}

	text, err := s.textgen.Generate(ctx, tpl)
	if err != nil || strings.TrimSpace(text) == "" {
		s.log.Warn().Err(err).Str("property_id", propertyID).Msg("description generation failed")
		return descriptionFallback
	}
	return strings.TrimSpace(text)
}

// ScoreLeadMatch asks the text service how well a lead matches a property,
// expecting strict JSON {score, reason}. Malformed output, a missing key, or
// a transport error all collapse to a zero-score result.
func (s *Store) ScoreLeadMatch(ctx context.Context, clientID, propertyID string) MatchResult {
	fallback := MatchResult{Score: 0, Reason: "Match scoring unavailable."}
	c, okC := s.Client(clientID)
	p, okP := s.Property(propertyID)
	if !okC || !okP || s.textgen == nil {
		return fallback
	}

	prompt := fmt.Sprintf(
		`Rate from 0 to 100 how well this lead matches this listing and answer ONLY strict JSON {"score":number,"reason":string}.
Lead: %s, source %s, notes: %s.
Listing: %s (%s) in %s for %.0f.`,
		c.Name, c.Source, c.Notes, p.Title, p.Type, p.Location, p.Price)

	raw, err := s.textgen.Generate(ctx, prompt)
	if err != nil {
		s.log.Warn().Err(err).Msg("match scoring failed")
		return fallback
	}

	var result MatchResult
	if err := json.Unmarshal([]byte(stripFences(raw)), &result); err != nil {
		s.log.Warn().Err(err).Str("raw", raw).Msg("match scoring returned malformed JSON")
		return fallback
	}
	return result
}

// stripFences removes a surrounding markdown code fence, which some models
// wrap JSON answers in despite instructions.
func stripFences(s string) string {
	out := strings.TrimSpace(s)
	if !strings.HasPrefix(out, "```") {
		return out
	}
	out = strings.TrimPrefix(out, "```json")
	out = strings.TrimPrefix(out, "```")
	out = strings.TrimSuffix(strings.TrimSpace(out), "```")
	return strings.TrimSpace(out)
}

// BrokerPerformance summarises one team member's current funnel.
type BrokerPerformance struct {
	UserID            string `json:"user_id"`
	Name              string `json:"name"`
	ActiveLeads       int    `json:"active_leads"`
	ScheduledVisits   int    `json:"scheduled_visits"`
	PublishedListings int    `json:"published_listings"`
	BelowTarget       bool   `json:"below_target"`
}

// TeamPerformanceReport counts every non-blocked member's active leads,
// scheduled visits and published listings, flagging those under the
// configured thresholds. Sorted by name.
func (s *Store) TeamPerformanceReport() []BrokerPerformance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	targets := s.settings.TeamPerformance
	byOwner := make(map[string]*BrokerPerformance, len(s.users))
	out := make([]BrokerPerformance, 0, len(s.users))
	for _, u := range s.users {
		if u.Blocked {
			continue
		}
		out = append(out, BrokerPerformance{UserID: u.ID, Name: u.Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	for i := range out {
		byOwner[out[i].UserID] = &out[i]
	}

	for _, c := range s.clients {
		perf, ok := byOwner[c.OwnerID]
		if !ok || c.LostReason != "" {
			continue
		}
		perf.ActiveLeads++
		for _, v := range c.Visits {
			if v.Status == domain.VisitScheduled {
				perf.ScheduledVisits++
			}
		}
	}
	for _, p := range s.properties {
		if perf, ok := byOwner[p.AuthorID]; ok && p.Status == domain.StatusPublished {
			perf.PublishedListings++
		}
	}

	for i := range out {
		out[i].BelowTarget = out[i].ActiveLeads < targets.MinActiveLeads ||
			out[i].ScheduledVisits < targets.MinScheduledVisits
	}
	return out
}

// LeadAgingReport classifies every active lead against the configured
// thresholds, keyed by freshness bucket.
func (s *Store) LeadAgingReport() map[domain.LeadFreshness][]domain.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	report := make(map[domain.LeadFreshness][]domain.Client)
	for _, c := range s.clients {
		if c.LostReason != "" {
			continue
		}
		bucket := c.Freshness(now, s.settings.LeadAging.WarmDays, s.settings.LeadAging.ColdDays)
		report[bucket] = append(report[bucket], cloneClient(c))
	}
	return report
}
