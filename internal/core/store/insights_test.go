package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/imoview/realty-crm/internal/core/domain"
)

func TestGenerateListingDescription_UsesGeneratedText(t *testing.T) {
	s := newTestStore(Deps{TextGen: &stubTextGen{reply: "  Linda casa com vista.  "}})
	seedUser(s, "Ana", "ana@example.com", domain.RoleAdmin)
	loginAs(t, s, "ana@example.com")
	p, _ := s.AddProperty(PropertyInput{Title: "Casa", Price: 100})

	got := s.GenerateListingDescription(context.Background(), p.ID)
	if got != "Linda casa com vista." {
		t.Errorf("expected trimmed generated text, got %q", got)
	}
}

func TestGenerateListingDescription_FallbackOnError(t *testing.T) {
	s := newTestStore(Deps{TextGen: &stubTextGen{err: errors.New("rate limited")}})
	seedUser(s, "Ana", "ana@example.com", domain.RoleAdmin)
	loginAs(t, s, "ana@example.com")
	p, _ := s.AddProperty(PropertyInput{Title: "Casa", Price: 100})

	if got := s.GenerateListingDescription(context.Background(), p.ID); got != descriptionFallback {
		t.Errorf("expected fallback text, got %q", got)
	}
}

func TestGenerateListingDescription_FallbackWithoutGenerator(t *testing.T) {
	s := newTestStore(Deps{})
	if got := s.GenerateListingDescription(context.Background(), "missing"); got != descriptionFallback {
		t.Errorf("expected fallback text, got %q", got)
	}
}

func TestScoreLeadMatch_ParsesFencedJSON(t *testing.T) {
	gen := &stubTextGen{reply: "```json\n{\"score\": 85, \"reason\": \"orçamento compatível\"}\n```"}
	s := newTestStore(Deps{TextGen: gen})
	seedUser(s, "Ana", "ana@example.com", domain.RoleAdmin)
	loginAs(t, s, "ana@example.com")
	c, _ := s.AddClient(ClientInput{Name: "João", Phone: "11988880001"})
	p, _ := s.AddProperty(PropertyInput{Title: "Casa", Price: 100})

	result := s.ScoreLeadMatch(context.Background(), c.ID, p.ID)
	if result.Score != 85 {
		t.Errorf("expected score 85, got %v", result.Score)
	}
	if result.Reason != "orçamento compatível" {
		t.Errorf("unexpected reason %q", result.Reason)
	}
}

func TestScoreLeadMatch_MalformedJSONFallsBackToZero(t *testing.T) {
	s := newTestStore(Deps{TextGen: &stubTextGen{reply: "the lead is a great match!"}})
	seedUser(s, "Ana", "ana@example.com", domain.RoleAdmin)
	loginAs(t, s, "ana@example.com")
	c, _ := s.AddClient(ClientInput{Name: "João", Phone: "11988880001"})
	p, _ := s.AddProperty(PropertyInput{Title: "Casa", Price: 100})

	result := s.ScoreLeadMatch(context.Background(), c.ID, p.ID)
	if result.Score != 0 {
		t.Errorf("malformed output must score zero, got %v", result.Score)
	}
}

func TestScoreLeadMatch_MissingEntities(t *testing.T) {
	s := newTestStore(Deps{TextGen: &stubTextGen{reply: `{"score":50,"reason":"x"}`}})
	result := s.ScoreLeadMatch(context.Background(), "no-client", "no-property")
	if result.Score != 0 {
		t.Errorf("missing entities must score zero, got %v", result.Score)
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct{ in, want string }{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tc := range cases {
		if got := stripFences(tc.in); got != tc.want {
			t.Errorf("stripFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLeadAgingReport_Buckets(t *testing.T) {
	s, _ := setupSalesStore(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return base.AddDate(0, 0, -30) }
	cold, _ := s.AddClient(ClientInput{Name: "Frio", Phone: "11988880001"})
	s.now = func() time.Time { return base.AddDate(0, 0, -10) }
	warm, _ := s.AddClient(ClientInput{Name: "Morno", Phone: "11988880002"})
	s.now = func() time.Time { return base }
	fresh, _ := s.AddClient(ClientInput{Name: "Novo", Phone: "11988880003"})

	report := s.LeadAgingReport()
	if len(report[domain.LeadCold]) != 1 || report[domain.LeadCold][0].ID != cold.ID {
		t.Errorf("cold bucket wrong: %+v", report[domain.LeadCold])
	}
	if len(report[domain.LeadWarm]) != 1 || report[domain.LeadWarm][0].ID != warm.ID {
		t.Errorf("warm bucket wrong: %+v", report[domain.LeadWarm])
	}
	if len(report[domain.LeadFresh]) != 1 || report[domain.LeadFresh][0].ID != fresh.ID {
		t.Errorf("fresh bucket wrong: %+v", report[domain.LeadFresh])
	}
}

func TestTeamPerformanceReport_CountsAndFlags(t *testing.T) {
	s, _ := setupSalesStore(t)
	seedUser(s, "Beto", "beto@example.com", domain.RoleBroker)

	if _, err := s.UpdateSettings(func() domain.SystemSettings {
		cfg := s.Settings()
		cfg.TeamPerformance = domain.TeamThresholds{MinActiveLeads: 2, MinScheduledVisits: 1}
		return cfg
	}()); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	// The admin owns two leads, one with a scheduled visit.
	lead, _ := s.AddClient(ClientInput{Name: "João", Phone: "11988880001"})
	if _, err := s.AddClient(ClientInput{Name: "Rita", Phone: "11988880002"}); err != nil {
		t.Fatalf("add client: %v", err)
	}
	p, _ := s.AddProperty(PropertyInput{Title: "Casa", Price: 100})
	if _, err := s.ScheduleVisit(lead.ID, p.ID, s.now().Add(24*time.Hour), ""); err != nil {
		t.Fatalf("schedule visit: %v", err)
	}

	report := s.TeamPerformanceReport()
	if len(report) != 2 {
		t.Fatalf("expected 2 members, got %d", len(report))
	}
	// Sorted by name: Ana then Beto.
	ana, beto := report[0], report[1]
	if ana.Name != "Ana" || beto.Name != "Beto" {
		t.Fatalf("unexpected ordering: %+v", report)
	}
	if ana.ActiveLeads != 2 || ana.ScheduledVisits != 1 || ana.PublishedListings != 1 {
		t.Errorf("unexpected admin counts: %+v", ana)
	}
	if ana.BelowTarget {
		t.Error("admin meets both thresholds and must not be flagged")
	}
	if beto.ActiveLeads != 0 || !beto.BelowTarget {
		t.Errorf("idle broker must be flagged: %+v", beto)
	}
}

func TestTeamPerformanceReport_LostLeadsAndBlockedUsersExcluded(t *testing.T) {
	s, _ := setupSalesStore(t)
	seedUser(s, "Beto", "beto@example.com", domain.RoleBroker)

	lead, _ := s.AddClient(ClientInput{Name: "João", Phone: "11988880001"})
	if err := s.MarkLeadAsLost(lead.ID, "bought elsewhere"); err != nil {
		t.Fatalf("mark lost: %v", err)
	}

	var betoID string
	for _, u := range s.Users() {
		if u.Name == "Beto" {
			betoID = u.ID
		}
	}
	if err := s.SetUserBlocked(betoID, true); err != nil {
		t.Fatalf("block: %v", err)
	}

	report := s.TeamPerformanceReport()
	if len(report) != 1 || report[0].Name != "Ana" {
		t.Fatalf("expected only the admin in the report, got %+v", report)
	}
	if report[0].ActiveLeads != 0 {
		t.Errorf("lost lead must not count as active: %+v", report[0])
	}
}
