package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pesio-ai/be-plt-login/internal/logger"
)

// LoginTrailRepository appends sign in/out records. Rows are never updated
// or deleted.
type LoginTrailRepository struct {
	db  Querier
	log *logger.Logger
	now func() time.Time
}

// NewLoginTrailRepository creates a new login trail repository
func NewLoginTrailRepository(db Querier, log *logger.Logger) *LoginTrailRepository {
	return &LoginTrailRepository{
		db:  db,
		log: log,
		now: time.Now,
	}
}

// Append inserts a trail entry, generating its ID and timestamp when absent,
// and returns the persisted record
func (r *LoginTrailRepository) Append(ctx context.Context, trail *LoginTrail) (*LoginTrail, error) {
	saved := *trail
	if saved.ID == "" {
		saved.ID = uuid.New().String()
	}
	if saved.InOutTime.IsZero() {
		saved.InOutTime = r.now()
	}

	query := `
		INSERT INTO login_trail (oid, user_oid, type, source_ip, in_out_time)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query, saved.ID, saved.UserID, saved.Type, saved.SourceIP, saved.InOutTime)
	if err != nil {
		return nil, fmt.Errorf("failed to append login trail: %w", err)
	}

	r.log.Debug().
		Str("trail_id", saved.ID).
		Str("user_id", saved.UserID).
		Str("type", saved.Type).
		Msg("Login trail saved")

	return &saved, nil
}
