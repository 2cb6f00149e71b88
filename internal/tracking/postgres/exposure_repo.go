// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

// Package postgres provides the PostgreSQL implementation of the
// tracking repositories.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/PourroyJean/babymiam-sub000/internal/tracking"
)

// DB is the subset of pgxpool.Pool the repository uses. pgxmock's
// PgxPoolIface satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ExposureRepository implements tracking.ExposureRepository using PostgreSQL.
type ExposureRepository struct {
	db DB
}

// NewExposureRepository creates a new ExposureRepository.
func NewExposureRepository(db DB) *ExposureRepository {
	return &ExposureRepository{db: db}
}

// Create stores a new exposure.
func (r *ExposureRepository) Create(ctx context.Context, exposure *tracking.Exposure) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO exposures (
			id, account_id, food_name, category, texture, reaction,
			allergen, notes, tried_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		exposure.ID.String(),
		exposure.AccountID.String(),
		exposure.FoodName,
		exposure.Category,
		string(exposure.Texture),
		string(exposure.Reaction),
		exposure.Allergen,
		exposure.Notes,
		exposure.TriedAt,
		exposure.CreatedAt,
	)
	if err != nil {
		return oops.Code("EXPOSURE_CREATE_FAILED").
			With("operation", "insert exposure").
			Wrap(err)
	}
	return nil
}

// GetByID retrieves an exposure by ID.
func (r *ExposureRepository) GetByID(ctx context.Context, id ulid.ULID) (*tracking.Exposure, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, account_id, food_name, category, texture, reaction,
		       allergen, notes, tried_at, created_at
		FROM exposures
		WHERE id = $1
	`, id.String())

	exposure, err := scanExposure(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("EXPOSURE_NOT_FOUND").
			With("id", id.String()).
			Wrap(tracking.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("EXPOSURE_GET_FAILED").
			With("operation", "get exposure by id").
			Wrap(err)
	}
	return exposure, nil
}

// ListByAccount retrieves all exposures for an account, most recent
// tried_at first.
func (r *ExposureRepository) ListByAccount(ctx context.Context, accountID ulid.ULID) ([]*tracking.Exposure, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, account_id, food_name, category, texture, reaction,
		       allergen, notes, tried_at, created_at
		FROM exposures
		WHERE account_id = $1
		ORDER BY tried_at DESC, id DESC
	`, accountID.String())
	if err != nil {
		return nil, oops.Code("EXPOSURE_LIST_FAILED").
			With("operation", "list exposures").
			Wrap(err)
	}
	defer rows.Close()

	var exposures []*tracking.Exposure
	for rows.Next() {
		exposure, err := scanExposure(rows)
		if err != nil {
			return nil, oops.Code("EXPOSURE_SCAN_FAILED").
				With("operation", "scan exposure row").
				Wrap(err)
		}
		exposures = append(exposures, exposure)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("EXPOSURE_LIST_FAILED").
			With("operation", "iterate exposure rows").
			Wrap(err)
	}
	return exposures, nil
}

// Update replaces the mutable fields of an exposure.
func (r *ExposureRepository) Update(ctx context.Context, exposure *tracking.Exposure) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE exposures
		SET food_name = $2, category = $3, texture = $4, reaction = $5,
		    allergen = $6, notes = $7, tried_at = $8
		WHERE id = $1
	`,
		exposure.ID.String(),
		exposure.FoodName,
		exposure.Category,
		string(exposure.Texture),
		string(exposure.Reaction),
		exposure.Allergen,
		exposure.Notes,
		exposure.TriedAt,
	)
	if err != nil {
		return oops.Code("EXPOSURE_UPDATE_FAILED").
			With("operation", "update exposure").
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("EXPOSURE_NOT_FOUND").
			With("id", exposure.ID.String()).
			Wrap(tracking.ErrNotFound)
	}
	return nil
}

// Delete removes an exposure.
func (r *ExposureRepository) Delete(ctx context.Context, id ulid.ULID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM exposures WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("EXPOSURE_DELETE_FAILED").
			With("operation", "delete exposure").
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("EXPOSURE_NOT_FOUND").
			With("id", id.String()).
			Wrap(tracking.ErrNotFound)
	}
	return nil
}

// scanExposure scans a single row into an Exposure.
func scanExposure(row pgx.Row) (*tracking.Exposure, error) {
	var (
		exposure       tracking.Exposure
		idStr, acctStr string
		texture        string
		reaction       string
	)
	err := row.Scan(
		&idStr,
		&acctStr,
		&exposure.FoodName,
		&exposure.Category,
		&texture,
		&reaction,
		&exposure.Allergen,
		&exposure.Notes,
		&exposure.TriedAt,
		&exposure.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("EXPOSURE_INVALID_ID").
			With("id", idStr).
			Wrap(err)
	}
	accountID, err := ulid.Parse(acctStr)
	if err != nil {
		return nil, oops.Code("EXPOSURE_INVALID_ACCOUNT_ID").
			With("account_id", acctStr).
			Wrap(err)
	}
	exposure.ID = id
	exposure.AccountID = accountID
	exposure.Texture = tracking.TextureStage(texture)
	exposure.Reaction = tracking.Reaction(reaction)
	return &exposure, nil
}

var _ tracking.ExposureRepository = (*ExposureRepository)(nil)
