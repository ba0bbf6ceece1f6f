package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/photographer-assignment/internal/model"
)

const photographerColumns = `id, name, email, phone, is_active`

// PhotographerRepositoryImpl handles persistence for photographers.
type PhotographerRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewPhotographerRepository constructs a PhotographerRepository.
func NewPhotographerRepository(db *pgxpool.Pool) *PhotographerRepositoryImpl {
	return &PhotographerRepositoryImpl{db: db}
}

// Create inserts a photographer. A taken email yields ErrDuplicateEmail.
func (r *PhotographerRepositoryImpl) Create(ctx context.Context, req model.CreatePhotographerRequest) (*model.Photographer, error) {
	p := &model.Photographer{
		ID:       NewID(),
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		IsActive: req.IsActive == nil || *req.IsActive,
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO photographers (id, name, email, phone, is_active)
		 VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Name, p.Email, p.Phone, p.IsActive,
	)
	if err != nil {
		return nil, fmt.Errorf("insert photographer: %w", mapPgError(err))
	}
	return p, nil
}

// List returns all photographers ordered by name.
func (r *PhotographerRepositoryImpl) List(ctx context.Context) ([]model.Photographer, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+photographerColumns+` FROM photographers ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list photographers: %w", err)
	}
	return collectPhotographers(rows)
}

// GetByID returns a single photographer or ErrNotFound.
func (r *PhotographerRepositoryImpl) GetByID(ctx context.Context, id string) (*model.Photographer, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	p, err := scanPhotographer(r.db.QueryRow(ctx,
		`SELECT `+photographerColumns+` FROM photographers WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get photographer: %w", err)
	}
	return p, nil
}

// Update replaces the mutable fields of an existing photographer.
func (r *PhotographerRepositoryImpl) Update(ctx context.Context, in *model.Photographer) (*model.Photographer, error) {
	if !validID(in.ID) {
		return nil, ErrNotFound
	}
	p, err := scanPhotographer(r.db.QueryRow(ctx,
		`UPDATE photographers
		 SET name = $2, email = $3, phone = $4, is_active = $5
		 WHERE id = $1
		 RETURNING `+photographerColumns,
		in.ID, in.Name, in.Email, in.Phone, in.IsActive,
	))
	if err != nil {
		return nil, fmt.Errorf("update photographer: %w", err)
	}
	return p, nil
}

// Delete removes a photographer; their assignments go with them.
func (r *PhotographerRepositoryImpl) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM photographers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete photographer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPhotographer(row pgx.Row) (*model.Photographer, error) {
	var p model.Photographer
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.IsActive); err != nil {
		return nil, mapPgError(err)
	}
	return &p, nil
}

func collectPhotographers(rows pgx.Rows) ([]model.Photographer, error) {
	defer rows.Close()

	var out []model.Photographer
	for rows.Next() {
		p, err := scanPhotographer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan photographer: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
