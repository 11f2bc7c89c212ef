package store

import (
	"strings"

	"github.com/imoview/realty-crm/internal/core/domain"
	"github.com/imoview/realty-crm/internal/core/ports"
)

// UserInput carries the fields a caller may set on a user.
type UserInput struct {
	Name     string
	Email    string
	Phone    string
	Role     domain.Role
	Password string
}

// AddUser creates a new account.
func (s *Store) AddUser(in UserInput) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !in.Role.Valid() {
		s.pushError("Unknown role.")
		return domain.User{}, domain.ErrForbidden
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, in.Email) {
			s.pushError("A user with this email already exists.")
			return domain.User{}, domain.ErrEmailExists
		}
	}

	user := domain.User{
		ID:        newID(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Role:      in.Role,
		Password:  in.Password,
		Version:   1,
		CreatedAt: s.now(),
	}
	s.users[user.ID] = user
	s.record(domain.ActionCreate, domain.KindUser, user.ID, user.Name, "user created", nil, user)
	s.enqueueUpsert(ports.TableUsers, user)
	s.pushSuccess("User " + user.Name + " created.")
	return user, nil
}

// UpdateUser modifies an existing account. Demoting the sole administrator is
// refused, whoever attempts it.
func (s *Store) UpdateUser(id string, in UserInput) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.users[id]
	if !ok {
		s.pushError("User not found.")
		return domain.User{}, domain.ErrUserNotFound
	}
	if in.Role != "" && !in.Role.Valid() {
		s.pushError("Unknown role.")
		return domain.User{}, domain.ErrForbidden
	}
	if in.Role != "" && in.Role != domain.RoleAdmin && prev.Role == domain.RoleAdmin && s.adminCountExcluding(id) == 0 {
		s.pushError("Cannot demote the last administrator.")
		return domain.User{}, domain.ErrLastAdmin
	}
	if in.Email != "" {
		for _, u := range s.users {
			if u.ID != id && strings.EqualFold(u.Email, in.Email) {
				s.pushError("A user with this email already exists.")
				return domain.User{}, domain.ErrEmailExists
			}
		}
	}

	next := prev
	if in.Name != "" {
		next.Name = in.Name
	}
	if in.Email != "" {
		next.Email = in.Email
	}
	if in.Phone != "" {
		next.Phone = in.Phone
	}
	if in.Role != "" {
		next.Role = in.Role
	}
	if in.Password != "" {
		next.Password = in.Password
	}
	next.Version = prev.Version + 1

	s.users[id] = next
	if s.current != nil && s.current.ID == id {
		clone := next
		s.current = &clone
		s.persistProjection()
	}
	s.record(domain.ActionUpdate, domain.KindUser, id, next.Name, "user updated", prev, next)
	s.enqueueUpsert(ports.TableUsers, next)
	s.pushSuccess("User " + next.Name + " updated.")
	return next, nil
}

// SetUserBlocked blocks or unblocks an account. Blocking yourself, or the
// last non-blocked administrator, is refused.
func (s *Store) SetUserBlocked(id string, blocked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.users[id]
	if !ok {
		s.pushError("User not found.")
		return domain.ErrUserNotFound
	}
	if blocked {
		if s.current != nil && s.current.ID == id {
			s.pushError("You cannot block your own account.")
			return domain.ErrSelfAction
		}
		if prev.Role == domain.RoleAdmin && !prev.Blocked && s.adminCountExcluding(id) == 0 {
			s.pushError("Cannot block the last administrator.")
			return domain.ErrLastAdmin
		}
	}

	next := prev
	next.Blocked = blocked
	next.Version = prev.Version + 1
	s.users[id] = next

	verb := "unblocked"
	if blocked {
		verb = "blocked"
	}
	s.record(domain.ActionUpdate, domain.KindUser, id, next.Name, "user "+verb, prev, next)
	s.enqueueUpsert(ports.TableUsers, next)
	s.pushSuccess("User " + next.Name + " " + verb + ".")
	return nil
}

// DeleteUser removes an account. Self-deletion and removing the last
// administrator are refused.
func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.users[id]
	if !ok {
		s.pushError("User not found.")
		return domain.ErrUserNotFound
	}
	if s.current != nil && s.current.ID == id {
		s.pushError("You cannot delete your own account.")
		return domain.ErrSelfAction
	}
	if prev.Role == domain.RoleAdmin && !prev.Blocked && s.adminCountExcluding(id) == 0 {
		s.pushError("Cannot delete the last administrator.")
		return domain.ErrLastAdmin
	}

	delete(s.users, id)
	s.record(domain.ActionDelete, domain.KindUser, id, prev.Name, "user deleted", prev, nil)
	s.enqueueDelete(ports.TableUsers, id)
	s.pushSuccess("User " + prev.Name + " deleted.")
	return nil
}

// adminCountExcluding counts non-blocked administrators other than the given
// user. Must be called under the lock.
func (s *Store) adminCountExcluding(id string) int {
	n := 0
	for _, u := range s.users {
		if u.ID != id && u.Role == domain.RoleAdmin && !u.Blocked {
			n++
		}
	}
	return n
}
