package store

import (
	"errors"
	"testing"

	"github.com/imoview/realty-crm/internal/core/domain"
	"github.com/imoview/realty-crm/internal/core/ports"
)

func TestAddUser_DuplicateEmail(t *testing.T) {
	s := newTestStore(Deps{})
	seedUser(s, "Ana", "ana@example.com", domain.RoleAdmin)

	if _, err := s.AddUser(UserInput{Name: "Clone", Email: "Ana@Example.com", Role: domain.RoleBroker}); err == nil {
		t.Fatal("expected duplicate email (case-insensitive) to be refused")
	}
}

func TestAddUser_UnknownRole(t *testing.T) {
	s := newTestStore(Deps{})
	_, err := s.AddUser(UserInput{Name: "X", Email: "x@example.com", Role: "superuser"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAddUser_EnqueuesRemoteWrite(t *testing.T) {
	outbox := &stubOutbox{}
	s := newTestStore(Deps{Outbox: outbox})

	u := seedUser(s, "Ana", "ana@example.com", domain.RoleAdmin)

	tasks := outbox.tasksFor(ports.TableUsers)
	if len(tasks) != 1 {
		t.Fatalf("expected 1 user sync task, got %d", len(tasks))
	}
	if tasks[0].Op != ports.SyncUpsert || tasks[0].ID != u.ID {
		t.Errorf("unexpected task: %+v", tasks[0])
	}
}

func TestUpdateUser_LastAdminCannotBeDemoted(t *testing.T) {
	s := newTestStore(Deps{})
	admin := seedUser(s, "Ana", "ana@example.com", domain.RoleAdmin)
	loginAs(t, s, "ana@example.com")

	_, err := s.UpdateUser(admin.ID, UserInput{Role: domain.RoleBroker})
	if !errors.Is(err, domain.ErrLastAdmin) {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}
	u, _ := s.User(admin.ID)
	if u.Role != domain.RoleAdmin {
		t.Error("refused demotion must leave the role untouched")
	}
}

func TestUpdateUser_DemoteAllowedWithSecondAdmin(t *testing.T) {
	s := newTestStore(Deps{})
	first := seedUser(s, "Ana", "ana@example.com", domain.RoleAdmin)
	seedUser(s, "Beto", "beto@example.com", domain.RoleAdmin)
	loginAs(t, s, "beto@example.com")

	if _, err := s.UpdateUser(first.ID, UserInput{Role: domain.RoleManager}); err != nil {
		t.Fatalf("demotion with a second admin present must succeed: %v", err)
	}
}

func TestUpdateUser_DuplicateEmailRefused(t *testing.T) {
	s := newTestStore(Deps{})
	seedUser(s, "Ana", "ana@example.com", domain.RoleAdmin)
	other := seedUser(s, "Beto", "beto@example.com", domain.RoleBroker)
	loginAs(t, s, "ana@example.com")

	if _, err := s.UpdateUser(other.ID, UserInput{Email: "Ana@Example.com"}); !errors.Is(err, domain.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	u, _ := s.User(other.ID)
	if u.Email != "beto@example.com" {
		t.Error("refused update must leave the email untouched")
	}

	// Re-casing your own address is not a collision.
	if _, err := s.UpdateUser(other.ID, UserInput{Email: "BETO@example.com"}); err != nil {
		t.Fatalf("updating a user's own email casing must succeed: %v", err)
	}
}

func TestUpdateUser_SelfUpdateRefreshesSession(t *testing.T) {
	s := newTestStore(Deps{})
	admin := seedUser(s, "Ana", "ana@example.com", domain.RoleAdmin)
	loginAs(t, s, "ana@example.com")

	if _, err := s.UpdateUser(admin.ID, UserInput{Name: "Ana Paula"}); err != nil {
		t.Fatalf("self update: %v", err)
	}
	current, _ := s.CurrentUser()
	if current.Name != "Ana Paula" {
		t.Errorf("session user must reflect the update, got %q", current.Name)
	}
}

func TestSetUserBlocked_SelfRefused(t *testing.T) {
	s := newTestStore(Deps{})
	admin := seedUser(s, "Ana", "ana@example.com", domain.RoleAdmin)
	loginAs(t, s, "ana@example.com")

	if err := s.SetUserBlocked(admin.ID, true); !errors.Is(err, domain.ErrSelfAction) {
		t.Fatalf("expected ErrSelfAction, got %v", err)
	}
}

func TestSetUserBlocked_LastAdminRefused(t *testing.T) {
	s := newTestStore(Deps{})
	admin := seedUser(s, "Ana", "ana@example.com", domain.RoleAdmin)
	seedUser(s, "Beto", "beto@example.com", domain.RoleBroker)
	loginAs(t, s, "beto@example.com")

	if err := s.SetUserBlocked(admin.ID, true); !errors.Is(err, domain.ErrLastAdmin) {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}
}

func TestSetUserBlocked_Unblock(t *testing.T) {
	s := newTestStore(Deps{})
	seedUser(s, "Ana", "ana@example.com", domain.RoleAdmin)
	broker := seedUser(s, "Beto", "beto@example.com", domain.RoleBroker)
	loginAs(t, s, "ana@example.com")

	if err := s.SetUserBlocked(broker.ID, true); err != nil {
		t.Fatalf("block: %v", err)
	}
	if err := s.SetUserBlocked(broker.ID, false); err != nil {
		t.Fatalf("unblock: %v", err)
	}
	u, _ := s.User(broker.ID)
	if u.Blocked {
		t.Error("user must be unblocked")
	}
	if u.Version != broker.Version+2 {
		t.Errorf("each change must bump the version, got %d", u.Version)
	}
}

func TestDeleteUser_SelfRefused(t *testing.T) {
	s := newTestStore(Deps{})
	admin := seedUser(s, "Ana", "ana@example.com", domain.RoleAdmin)
	loginAs(t, s, "ana@example.com")

	if err := s.DeleteUser(admin.ID); !errors.Is(err, domain.ErrSelfAction) {
		t.Fatalf("expected ErrSelfAction, got %v", err)
	}
}

func TestDeleteUser_LastAdminRefused(t *testing.T) {
	s := newTestStore(Deps{})
	admin := seedUser(s, "Ana", "ana@example.com", domain.RoleAdmin)
	seedUser(s, "Beto", "beto@example.com", domain.RoleBroker)
	loginAs(t, s, "beto@example.com")

	if err := s.DeleteUser(admin.ID); !errors.Is(err, domain.ErrLastAdmin) {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}
}

func TestDeleteUser_EnqueuesRemoteDelete(t *testing.T) {
	outbox := &stubOutbox{}
	s := newTestStore(Deps{Outbox: outbox})
	seedUser(s, "Ana", "ana@example.com", domain.RoleAdmin)
	broker := seedUser(s, "Beto", "beto@example.com", domain.RoleBroker)
	loginAs(t, s, "ana@example.com")

	if err := s.DeleteUser(broker.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var deletes int
	for _, task := range outbox.tasksFor(ports.TableUsers) {
		if task.Op == ports.SyncDelete && task.ID == broker.ID {
			deletes++
		}
	}
	if deletes != 1 {
		t.Errorf("expected 1 remote delete for the user, got %d", deletes)
	}
}
