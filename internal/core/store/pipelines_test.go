package store

import (
	"errors"
	"testing"

	"github.com/imoview/realty-crm/internal/core/domain"
)

func TestAddPipeline_FirstBecomesDefault(t *testing.T) {
	s := newTestStore(Deps{})
	seedUser(s, "Ana", "ana@example.com", domain.RoleAdmin)
	loginAs(t, s, "ana@example.com")

	first, err := s.AddPipeline("Vendas", []domain.Stage{{Name: "Novo"}})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !first.IsDefault {
		t.Error("first pipeline must become the default")
	}

	second, _ := s.AddPipeline("Locação", []domain.Stage{{Name: "Novo"}})
	if second.IsDefault {
		t.Error("second pipeline must not be the default")
	}
}

func TestAddPipeline_RequiresStages(t *testing.T) {
	s := newTestStore(Deps{})
	_, err := s.AddPipeline("Vazio", nil)
	if !errors.Is(err, domain.ErrNoStages) {
		t.Fatalf("expected ErrNoStages, got %v", err)
	}
}

func TestAddPipeline_AssignsStageIDs(t *testing.T) {
	s := newTestStore(Deps{})
	p, _ := s.AddPipeline("Vendas", []domain.Stage{{Name: "Novo"}, {ID: "fixed", Name: "Contato"}})

	if p.Stages[0].ID == "" {
		t.Error("stages without an id must get one")
	}
	if p.Stages[1].ID != "fixed" {
		t.Error("provided stage ids must be kept")
	}
}

func TestDeletePipeline_DefaultRefused(t *testing.T) {
	s, pipeline := setupSalesStore(t)

	if err := s.DeletePipeline(pipeline.ID); !errors.Is(err, domain.ErrDefaultPipeline) {
		t.Fatalf("expected ErrDefaultPipeline, got %v", err)
	}
}

func TestDeletePipeline_DetachesLeads(t *testing.T) {
	s, _ := setupSalesStore(t)
	other, _ := s.AddPipeline("Locação", []domain.Stage{{Name: "Novo"}})
	c, _ := s.AddClient(ClientInput{Name: "João", Phone: "11988880001"})
	if err := s.MoveLeadToStage(c.ID, other.ID, other.Stages[0].ID); err != nil {
		t.Fatalf("move: %v", err)
	}

	if err := s.DeletePipeline(other.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, ok := s.Client(c.ID)
	if !ok {
		t.Fatal("lead must survive its pipeline")
	}
	if got.PipelineID != "" || got.Stage != "" {
		t.Error("lead must be detached from the deleted pipeline")
	}
}

func TestSetDefaultPipeline_ClearsPreviousDefault(t *testing.T) {
	s, first := setupSalesStore(t)
	second, _ := s.AddPipeline("Locação", []domain.Stage{{Name: "Novo"}})

	if err := s.SetDefaultPipeline(second.ID); err != nil {
		t.Fatalf("set default: %v", err)
	}

	defaults := 0
	for _, p := range s.Pipelines() {
		if p.IsDefault {
			defaults++
			if p.ID != second.ID {
				t.Errorf("wrong default pipeline: %s", p.Name)
			}
		}
	}
	if defaults != 1 {
		t.Errorf("exactly one default expected, got %d", defaults)
	}

	prev, _ := s.Pipeline(first.ID)
	if prev.IsDefault {
		t.Error("previous default must be cleared")
	}
}

func TestUpdatePipeline_KeepsAtLeastOneStage(t *testing.T) {
	s, pipeline := setupSalesStore(t)

	_, err := s.UpdatePipeline(pipeline.ID, "", []domain.Stage{})
	if !errors.Is(err, domain.ErrNoStages) {
		t.Fatalf("expected ErrNoStages, got %v", err)
	}
	// nil stages means "leave them alone".
	updated, err := s.UpdatePipeline(pipeline.ID, "Vendas 2026", nil)
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if updated.Name != "Vendas 2026" || len(updated.Stages) != len(pipeline.Stages) {
		t.Errorf("rename must keep the stages: %+v", updated)
	}
}
