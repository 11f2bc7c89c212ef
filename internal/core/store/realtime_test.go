package store

import (
	"context"
	"testing"

	"github.com/imoview/realty-crm/internal/core/domain"
	"github.com/imoview/realty-crm/internal/core/ports"
)

type stubRemote struct {
	tables map[string][]ports.Document
	err    error
}

func (r *stubRemote) FetchAll(_ context.Context, table string) ([]ports.Document, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.tables[table], nil
}

func (r *stubRemote) Upsert(context.Context, string, ports.Document) error { return nil }
func (r *stubRemote) Delete(context.Context, string, string) error         { return nil }

func TestHydrate_LoadsAllTables(t *testing.T) {
	remote := &stubRemote{tables: map[string][]ports.Document{
		ports.TableUsers: {
			{"id": "u1", "name": "Ana", "email": "ana@example.com", "role": "admin", "version": float64(3)},
		},
		ports.TableProperties: {
			{"id": "p1", "title": "Casa", "status": "published", "version": float64(1)},
		},
		ports.TableClients: {
			{"id": "c1", "name": "João", "phone": "11988880001", "version": float64(2)},
		},
	}}
	s := newTestStore(Deps{Remote: remote})

	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	if u, ok := s.User("u1"); !ok || u.Name != "Ana" {
		t.Errorf("user not hydrated: %+v", u)
	}
	if p, ok := s.Property("p1"); !ok || p.Status != domain.StatusPublished {
		t.Errorf("property not hydrated: %+v", p)
	}
	if c, ok := s.Client("c1"); !ok || c.Phone != "11988880001" {
		t.Errorf("client not hydrated: %+v", c)
	}
}

func TestHydrate_SkipsMalformedDocuments(t *testing.T) {
	remote := &stubRemote{tables: map[string][]ports.Document{
		ports.TableUsers: {
			{"name": "sem id"},
			{"id": "u1", "name": "Ana", "version": float64(1)},
		},
	}}
	s := newTestStore(Deps{Remote: remote})

	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if len(s.Users()) != 1 {
		t.Errorf("malformed document must be skipped, got %d users", len(s.Users()))
	}
}

func TestHydrate_KeepsNewerSessionUser(t *testing.T) {
	remote := &stubRemote{tables: map[string][]ports.Document{
		ports.TableUsers: {
			{"id": "u1", "name": "Ana Remota", "email": "ana@example.com", "role": "admin", "version": float64(1)},
		},
	}}
	s := newTestStore(Deps{Remote: remote})
	// Local optimistic copy is ahead of the remote one.
	local := domain.User{ID: "u1", Name: "Ana Local", Email: "ana@example.com", Role: domain.RoleAdmin, Version: 5}
	s.users[local.ID] = local
	clone := local
	s.current = &clone

	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	current, _ := s.CurrentUser()
	if current.Name != "Ana Local" {
		t.Errorf("stale remote copy must not clobber the session user, got %q", current.Name)
	}

	// A newer remote copy replaces the session identity.
	remote.tables[ports.TableUsers][0]["version"] = float64(9)
	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	current, _ = s.CurrentUser()
	if current.Name != "Ana Remota" {
		t.Errorf("newer remote copy must refresh the session user, got %q", current.Name)
	}
}

func TestApplyRemoteChange_NewerVersionWins(t *testing.T) {
	s, _ := setupSalesStore(t)
	c, _ := s.AddClient(ClientInput{Name: "João", Phone: "11988880001"})

	s.ApplyRemoteChange(ports.ChangeEvent{
		Type:  ports.ChangeUpdate,
		Table: ports.TableClients,
		Document: ports.Document{
			"id": c.ID, "name": "João Remoto", "phone": "11988880001", "version": float64(c.Version + 5),
		},
	})

	got, _ := s.Client(c.ID)
	if got.Name != "João Remoto" {
		t.Errorf("newer remote version must apply, got %q", got.Name)
	}
}

func TestApplyRemoteChange_StaleVersionDropped(t *testing.T) {
	s, _ := setupSalesStore(t)
	c, _ := s.AddClient(ClientInput{Name: "João", Phone: "11988880001"})
	updated, _ := s.UpdateClient(c.ID, ClientInput{Name: "João Novo"})

	s.ApplyRemoteChange(ports.ChangeEvent{
		Type:  ports.ChangeUpdate,
		Table: ports.TableClients,
		Document: ports.Document{
			"id": c.ID, "name": "João Velho", "version": float64(updated.Version - 1),
		},
	})

	got, _ := s.Client(c.ID)
	if got.Name != "João Novo" {
		t.Errorf("stale remote echo must be dropped, got %q", got.Name)
	}
}

func TestApplyRemoteChange_DoubleApplyIsIdempotent(t *testing.T) {
	s := newTestStore(Deps{})
	evt := ports.ChangeEvent{
		Type:  ports.ChangeUpdate,
		Table: ports.TableProperties,
		Document: ports.Document{
			"id": "p1", "title": "Casa", "status": "published", "version": float64(4),
		},
	}

	s.ApplyRemoteChange(evt)
	first, _ := s.Property("p1")
	s.ApplyRemoteChange(evt)
	second, _ := s.Property("p1")

	if first.Version != second.Version || second.Title != "Casa" {
		t.Errorf("second apply must change nothing: %+v vs %+v", first, second)
	}
}

func TestApplyRemoteChange_Delete(t *testing.T) {
	s, _ := setupSalesStore(t)
	c, _ := s.AddClient(ClientInput{Name: "João", Phone: "11988880001"})

	s.ApplyRemoteChange(ports.ChangeEvent{
		Type:     ports.ChangeDelete,
		Table:    ports.TableClients,
		Document: ports.Document{"id": c.ID},
	})

	if _, ok := s.Client(c.ID); ok {
		t.Error("remote delete must remove the local record")
	}
}

func TestApplyRemoteChange_SettingsSingleton(t *testing.T) {
	s := newTestStore(Deps{})

	s.ApplyRemoteChange(ports.ChangeEvent{
		Type:  ports.ChangeUpdate,
		Table: ports.TableSettings,
		Document: ports.Document{
			"id": "whatever-id-came-over-the-wire", "require_property_approval": false, "version": float64(9),
		},
	})

	cfg := s.Settings()
	if cfg.ID != domain.SettingsID {
		t.Errorf("settings id must stay fixed, got %q", cfg.ID)
	}
	if cfg.RequirePropertyApproval {
		t.Error("settings change not applied")
	}
}

func TestApplyRemoteChange_RefreshesSessionUser(t *testing.T) {
	s := newTestStore(Deps{})
	u := seedUser(s, "Ana", "ana@example.com", domain.RoleAdmin)
	loginAs(t, s, "ana@example.com")

	s.ApplyRemoteChange(ports.ChangeEvent{
		Type:  ports.ChangeUpdate,
		Table: ports.TableUsers,
		Document: ports.Document{
			"id": u.ID, "name": "Ana Atualizada", "email": "ana@example.com", "role": "admin",
			"version": float64(u.Version + 1),
		},
	})

	current, _ := s.CurrentUser()
	if current.Name != "Ana Atualizada" {
		t.Errorf("session user must follow a newer remote change, got %q", current.Name)
	}
}

func TestApplyRemoteChange_MissingIDDropped(t *testing.T) {
	s := newTestStore(Deps{})
	s.ApplyRemoteChange(ports.ChangeEvent{
		Type:     ports.ChangeUpdate,
		Table:    ports.TableClients,
		Document: ports.Document{"name": "sem id"},
	})
	if len(s.Clients()) != 0 {
		t.Error("change without id must be dropped")
	}
}
