package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/pesio-ai/be-plt-login/internal/repository"
)

type fakeUsers struct {
	byName map[string]*repository.User
	err    error
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*repository.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byName[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeRoles struct {
	userRoles     map[string]*repository.UserRole
	roles         map[string]*repository.Role
	userRoleCalls atomic.Int32
	roleCalls     atomic.Int32
}

func (f *fakeRoles) GetUserRole(_ context.Context, userID string) (*repository.UserRole, error) {
	f.userRoleCalls.Add(1)
	ur, ok := f.userRoles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return ur, nil
}

func (f *fakeRoles) GetByID(_ context.Context, roleID string) (*repository.Role, error) {
	f.roleCalls.Add(1)
	r, ok := f.roles[roleID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r, nil
}

type fakeEmployees struct {
	byUser map[string]*repository.Employee
	err    error
	calls  atomic.Int32
}

func (f *fakeEmployees) GetByUserID(_ context.Context, userID string) (*repository.Employee, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.byUser[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return e, nil
}

type fakeInstitutions struct {
	mfis        map[string]*repository.Mfi
	branches    map[string]*repository.Branch
	mfiCalls    atomic.Int32
	branchCalls atomic.Int32
}

func (f *fakeInstitutions) GetMfi(_ context.Context, mfiID string) (*repository.Mfi, error) {
	f.mfiCalls.Add(1)
	m, ok := f.mfis[mfiID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m, nil
}

func (f *fakeInstitutions) GetBranch(_ context.Context, branchID string) (*repository.Branch, error) {
	f.branchCalls.Add(1)
	b, ok := f.branches[branchID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return b, nil
}

var errTrailStore = errors.New("trail store unavailable")

type fakeTrails struct {
	mu       sync.Mutex
	entries  []repository.LoginTrail
	failSync bool
}

func (f *fakeTrails) Record(_ context.Context, trail *repository.LoginTrail) (*repository.LoginTrail, error) {
	if f.failSync {
		return nil, errTrailStore
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *trail)
	saved := *trail
	return &saved, nil
}

func (f *fakeTrails) RecordAsync(trail *repository.LoginTrail) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *trail)
}

func (f *fakeTrails) ofType(trailType string) []repository.LoginTrail {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.LoginTrail
	for _, e := range f.entries {
		if e.Type == trailType {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeTrails) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}
