package repository

import (
	"context"
	"fmt"
)

// Schema creates the tables the login service reads and the login trail it
// appends to. Statements are idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS user_info (
		oid                     VARCHAR(128) PRIMARY KEY,
		username                VARCHAR(128) NOT NULL UNIQUE,
		password                VARCHAR(256) NOT NULL,
		status                  VARCHAR(32)  NOT NULL,
		password_reset_required VARCHAR(8),
		created_on              TIMESTAMPTZ  NOT NULL DEFAULT now(),
		updated_on              TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS role (
		oid       VARCHAR(128) PRIMARY KEY,
		role_name VARCHAR(128) NOT NULL,
		status    VARCHAR(32)  NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_role (
		oid        VARCHAR(128) PRIMARY KEY,
		user_oid   VARCHAR(128) NOT NULL REFERENCES user_info (oid),
		role_oid   VARCHAR(128) NOT NULL REFERENCES role (oid),
		created_on TIMESTAMPTZ  NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS mfi (
		oid            VARCHAR(128) PRIMARY KEY,
		mfi_name       VARCHAR(256) NOT NULL,
		license_number VARCHAR(128),
		status         VARCHAR(32)  NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS branch (
		oid         VARCHAR(128) PRIMARY KEY,
		mfi_oid     VARCHAR(128) NOT NULL REFERENCES mfi (oid),
		branch_code VARCHAR(64)  NOT NULL,
		branch_name VARCHAR(256) NOT NULL,
		status      VARCHAR(32)  NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS employee (
		oid           VARCHAR(128) PRIMARY KEY,
		user_oid      VARCHAR(128) NOT NULL UNIQUE REFERENCES user_info (oid),
		full_name     VARCHAR(256) NOT NULL,
		designation   VARCHAR(128),
		mobile_number VARCHAR(32),
		email         VARCHAR(256),
		status        VARCHAR(32)  NOT NULL,
		mfi_oid       VARCHAR(128) REFERENCES mfi (oid),
		branch_oid    VARCHAR(128) REFERENCES branch (oid)
	)`,
	`CREATE TABLE IF NOT EXISTS login_trail (
		oid         VARCHAR(128) PRIMARY KEY,
		user_oid    VARCHAR(128) NOT NULL,
		type        VARCHAR(16)  NOT NULL,
		source_ip   VARCHAR(64),
		in_out_time TIMESTAMPTZ  NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_login_trail_user ON login_trail (user_oid, in_out_time)`,
}

// Migrate applies Schema in order
func Migrate(ctx context.Context, db Querier) error {
	for i, stmt := range Schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
