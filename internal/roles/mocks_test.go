package roles

import (
	"context"
	"fmt"
	"sync"
)

// FakeDirectory is an in-memory Directory for tests. It tracks grants and
// revokes so tests can assert the exact call set, and individual methods
// can be forced to fail.
type FakeDirectory struct {
	mu      sync.Mutex
	roles   []Role
	members map[string]*Member
	nextID  int

	FailGrant  error
	FailRevoke error
	FailCreate error

	Granted []string // "userID:roleName"
	Revoked []string // "userID:roleName"
}

func NewFakeDirectory() *FakeDirectory {
	return &FakeDirectory{members: make(map[string]*Member)}
}

// AddRole seeds a role and returns its ID.
func (f *FakeDirectory) AddRole(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("role-%d", f.nextID)
	f.roles = append(f.roles, Role{ID: id, Name: name})
	return id
}

// AddMember seeds a member holding the named roles (which must exist).
func (f *FakeDirectory) AddMember(userID string, roleNames ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := &Member{UserID: userID}
	for _, name := range roleNames {
		for _, r := range f.roles {
			if r.Name == name {
				m.RoleIDs = append(m.RoleIDs, r.ID)
			}
		}
	}
	f.members[userID] = m
}

func (f *FakeDirectory) roleName(id string) string {
	for _, r := range f.roles {
		if r.ID == id {
			return r.Name
		}
	}
	return id
}

func (f *FakeDirectory) ListRoles(_ context.Context, _ string) ([]Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Role(nil), f.roles...), nil
}

func (f *FakeDirectory) CreateRole(_ context.Context, _ string, name string) (Role, error) {
	if f.FailCreate != nil {
		return Role{}, f.FailCreate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r := Role{ID: fmt.Sprintf("role-%d", f.nextID), Name: name}
	f.roles = append(f.roles, r)
	return r, nil
}

func (f *FakeDirectory) GrantRole(_ context.Context, _ string, userID, roleID string) error {
	if f.FailGrant != nil {
		return f.FailGrant
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[userID]
	if !ok {
		m = &Member{UserID: userID}
		f.members[userID] = m
	}
	m.RoleIDs = append(m.RoleIDs, roleID)
	f.Granted = append(f.Granted, userID+":"+f.roleName(roleID))
	return nil
}

func (f *FakeDirectory) RevokeRole(_ context.Context, _ string, userID, roleID string) error {
	if f.FailRevoke != nil {
		return f.FailRevoke
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[userID]
	if !ok {
		return fmt.Errorf("no such member %s", userID)
	}
	kept := m.RoleIDs[:0]
	for _, id := range m.RoleIDs {
		if id != roleID {
			kept = append(kept, id)
		}
	}
	m.RoleIDs = kept
	f.Revoked = append(f.Revoked, userID+":"+f.roleName(roleID))
	return nil
}

func (f *FakeDirectory) ListMembers(_ context.Context, _ string) ([]Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Member, 0, len(f.members))
	for _, m := range f.members {
		out = append(out, Member{UserID: m.UserID, RoleIDs: append([]string(nil), m.RoleIDs...)})
	}
	return out, nil
}
