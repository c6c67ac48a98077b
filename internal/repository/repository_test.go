package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesio-ai/be-plt-login/internal/logger"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: got %d destinations for %d values", len(dest), len(r.values))
	}
	for i, d := range dest {
		dv := reflect.ValueOf(d).Elem()
		if r.values[i] == nil {
			dv.Set(reflect.Zero(dv.Type()))
			continue
		}
		dv.Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

type fakeDB struct {
	row     fakeRow
	execErr error
	queries []string
	args    [][]any
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.queries = append(f.queries, sql)
	f.args = append(f.args, args)
	return f.row
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.queries = append(f.queries, sql)
	f.args = append(f.args, args)
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func strPtr(s string) *string { return &s }

func TestUserRepositoryGetByUsername(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	db := &fakeDB{row: fakeRow{values: []any{"U1", "alice", "$argon2id$hash", "Active", "No", created, nil}}}
	repo := NewUserRepository(db, logger.Nop())

	user, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, "U1", user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "$argon2id$hash", user.PasswordHash)
	assert.Equal(t, StatusActive, user.Status)
	assert.Equal(t, "No", user.PasswordResetRequired)
	assert.Equal(t, created, user.CreatedAt)
	assert.Nil(t, user.UpdatedAt)
	assert.Equal(t, []any{"alice"}, db.args[0])
}

func TestRepositoriesMapNoRowsToNotFound(t *testing.T) {
	db := &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}
	log := logger.Nop()
	ctx := context.Background()

	lookups := map[string]func() error{
		"user": func() error {
			_, err := NewUserRepository(db, log).GetByUsername(ctx, "ghost")
			return err
		},
		"user role": func() error {
			_, err := NewRoleRepository(db, log).GetUserRole(ctx, "U1")
			return err
		},
		"role": func() error {
			_, err := NewRoleRepository(db, log).GetByID(ctx, "R1")
			return err
		},
		"employee": func() error {
			_, err := NewEmployeeRepository(db, log).GetByUserID(ctx, "U1")
			return err
		},
		"mfi": func() error {
			_, err := NewInstitutionRepository(db, log).GetMfi(ctx, "M1")
			return err
		},
		"branch": func() error {
			_, err := NewInstitutionRepository(db, log).GetBranch(ctx, "B1")
			return err
		},
	}

	for name, lookup := range lookups {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, lookup(), ErrNotFound)
		})
	}
}

func TestRepositoriesWrapDriverErrors(t *testing.T) {
	boom := errors.New("connection reset")
	db := &fakeDB{row: fakeRow{err: boom}}

	_, err := NewRoleRepository(db, logger.Nop()).GetByID(context.Background(), "R1")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRoleRepository(t *testing.T) {
	ctx := context.Background()
	created := time.Now().UTC()

	db := &fakeDB{row: fakeRow{values: []any{"UR1", "U1", "R1", created}}}
	ur, err := NewRoleRepository(db, logger.Nop()).GetUserRole(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, &UserRole{ID: "UR1", UserID: "U1", RoleID: "R1", CreatedAt: created}, ur)
	assert.Contains(t, db.queries[0], "LIMIT 1")

	db = &fakeDB{row: fakeRow{values: []any{"R1", "teller", "Active"}}}
	role, err := NewRoleRepository(db, logger.Nop()).GetByID(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, &Role{ID: "R1", Name: "teller", Status: "Active"}, role)
}

func TestEmployeeRepositoryOptionalAssociations(t *testing.T) {
	tests := []struct {
		name       string
		mfi        any
		branch     any
		wantMfi    *string
		wantBranch *string
	}{
		{name: "head office", mfi: nil, branch: nil},
		{name: "institution only", mfi: strPtr("M1"), branch: nil, wantMfi: strPtr("M1")},
		{name: "institution and branch", mfi: strPtr("M1"), branch: strPtr("B1"), wantMfi: strPtr("M1"), wantBranch: strPtr("B1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &fakeDB{row: fakeRow{values: []any{
				"E1", "U1", "Alice Rahman", "Officer", "01700000000", "alice@example.com", "Active", tt.mfi, tt.branch,
			}}}

			e, err := NewEmployeeRepository(db, logger.Nop()).GetByUserID(context.Background(), "U1")
			require.NoError(t, err)
			assert.Equal(t, "Alice Rahman", e.FullName)
			assert.Equal(t, tt.wantMfi, e.MfiID)
			assert.Equal(t, tt.wantBranch, e.BranchID)
		})
	}
}

func TestInstitutionRepository(t *testing.T) {
	ctx := context.Background()

	db := &fakeDB{row: fakeRow{values: []any{"M1", "Grameen Trust", "LIC-1", "Active"}}}
	mfi, err := NewInstitutionRepository(db, logger.Nop()).GetMfi(ctx, "M1")
	require.NoError(t, err)
	assert.Equal(t, &Mfi{ID: "M1", Name: "Grameen Trust", LicenseNumber: "LIC-1", Status: "Active"}, mfi)

	db = &fakeDB{row: fakeRow{values: []any{"B1", "DHK-01", "Dhaka Main", "Inactive"}}}
	branch, err := NewInstitutionRepository(db, logger.Nop()).GetBranch(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, &Branch{ID: "B1", Code: "DHK-01", Name: "Dhaka Main", Status: "Inactive"}, branch)
}

func TestLoginTrailRepositoryAppend(t *testing.T) {
	fixed := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("generates id and timestamp", func(t *testing.T) {
		db := &fakeDB{}
		repo := NewLoginTrailRepository(db, logger.Nop())
		repo.now = func() time.Time { return fixed }

		in := &LoginTrail{UserID: "U1", Type: TrailSignIn, SourceIP: "10.0.0.1"}
		saved, err := repo.Append(context.Background(), in)
		require.NoError(t, err)

		assert.NotEmpty(t, saved.ID)
		assert.Equal(t, fixed, saved.InOutTime)
		assert.Empty(t, in.ID, "input record must not be mutated")
		assert.Equal(t, []any{saved.ID, "U1", TrailSignIn, "10.0.0.1", fixed}, db.args[0])
	})

	t.Run("keeps provided id", func(t *testing.T) {
		db := &fakeDB{}
		repo := NewLoginTrailRepository(db, logger.Nop())

		saved, err := repo.Append(context.Background(), &LoginTrail{ID: "T1", UserID: "U1", Type: TrailSignOut, InOutTime: fixed})
		require.NoError(t, err)
		assert.Equal(t, "T1", saved.ID)
		assert.Equal(t, fixed, saved.InOutTime)
	})

	t.Run("insert failure", func(t *testing.T) {
		db := &fakeDB{execErr: errors.New("disk full")}
		repo := NewLoginTrailRepository(db, logger.Nop())

		saved, err := repo.Append(context.Background(), &LoginTrail{UserID: "U1", Type: TrailSignIn})
		assert.Nil(t, saved)
		assert.ErrorContains(t, err, "disk full")
	})
}

func TestMigrate(t *testing.T) {
	db := &fakeDB{}
	require.NoError(t, Migrate(context.Background(), db))
	assert.Len(t, db.queries, len(Schema))

	db = &fakeDB{execErr: errors.New("permission denied")}
	err := Migrate(context.Background(), db)
	assert.ErrorContains(t, err, "schema statement 0")
	assert.Len(t, db.queries, 1)
}
