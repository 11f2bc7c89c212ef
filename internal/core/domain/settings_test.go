package domain

import (
	"strings"
	"testing"
)

func TestRenderTemplate_SubstitutesPlaceholders(t *testing.T) {
	cfg := DefaultSettings()

	body := cfg.RenderTemplate("propertyApproved", map[string]string{
		"ownerName":     "Maria",
		"propertyTitle": "Casa no Centro",
	})

	if !strings.Contains(body, "Maria") {
		t.Errorf("owner name not substituted: %q", body)
	}
	if !strings.Contains(body, "Casa no Centro") {
		t.Errorf("property title not substituted: %q", body)
	}
	if strings.Contains(body, "{{") {
		t.Errorf("unresolved placeholder left in body: %q", body)
	}
}

func TestRenderTemplate_UnknownTemplate(t *testing.T) {
	cfg := DefaultSettings()
	if body := cfg.RenderTemplate("doesNotExist", nil); body != "" {
		t.Errorf("unknown template must render empty, got %q", body)
	}
}

func TestDefaultSettings(t *testing.T) {
	cfg := DefaultSettings()
	if cfg.ID != SettingsID {
		t.Errorf("expected fixed settings id, got %q", cfg.ID)
	}
	if !cfg.RequirePropertyApproval {
		t.Error("approval must be required by default")
	}
	if cfg.LeadAging.WarmDays != 7 || cfg.LeadAging.ColdDays != 21 {
		t.Errorf("unexpected default aging thresholds: %+v", cfg.LeadAging)
	}
}
