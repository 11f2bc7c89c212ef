package domain

import (
	"testing"
	"time"
)

func TestClient_NextVisit_PicksEarliestFutureScheduled(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := Client{Visits: []Visit{
		{ID: "v1", Date: now.Add(72 * time.Hour), Status: VisitScheduled},
		{ID: "v2", Date: now.Add(24 * time.Hour), Status: VisitScheduled},
		{ID: "v3", Date: now.Add(-24 * time.Hour), Status: VisitScheduled},
		{ID: "v4", Date: now.Add(2 * time.Hour), Status: VisitCancelled},
	}}

	next := c.NextVisit(now)
	if next == nil {
		t.Fatal("expected a next visit")
	}
	if next.ID != "v2" {
		t.Errorf("expected v2 (earliest future scheduled), got %s", next.ID)
	}
}

func TestClient_NextVisit_NoneScheduled(t *testing.T) {
	now := time.Now()
	c := Client{Visits: []Visit{
		{ID: "v1", Date: now.Add(-time.Hour), Status: VisitScheduled},
		{ID: "v2", Date: now.Add(time.Hour), Status: VisitCompleted},
	}}

	if v := c.NextVisit(now); v != nil {
		t.Errorf("expected nil, got visit %s", v.ID)
	}
}

func TestClient_NextVisit_ReturnsClone(t *testing.T) {
	now := time.Now()
	c := Client{Visits: []Visit{{ID: "v1", Date: now.Add(time.Hour), Status: VisitScheduled}}}

	v := c.NextVisit(now)
	v.Notes = "mutated"

	if c.Visits[0].Notes != "" {
		t.Error("mutating the returned visit must not touch the client")
	}
}

func TestClient_Freshness(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		daysAgo int
		want    LeadFreshness
	}{
		{0, LeadFresh},
		{6, LeadFresh},
		{7, LeadWarm},
		{20, LeadWarm},
		{21, LeadCold},
		{100, LeadCold},
	}
	for _, tc := range cases {
		c := Client{LastContactAt: now.AddDate(0, 0, -tc.daysAgo)}
		if got := c.Freshness(now, 7, 21); got != tc.want {
			t.Errorf("%d days ago: got %s, want %s", tc.daysAgo, got, tc.want)
		}
	}
}

func TestClient_Freshness_DefaultsOnBadThresholds(t *testing.T) {
	now := time.Now()
	c := Client{LastContactAt: now.AddDate(0, 0, -10)}

	// Zero thresholds fall back to 7/21.
	if got := c.Freshness(now, 0, 0); got != LeadWarm {
		t.Errorf("expected warm with default thresholds, got %s", got)
	}
}
