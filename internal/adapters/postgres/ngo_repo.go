package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/donamatch/donamatch/internal/core/domain"
)

const ngoColumns = `id, name, description, address, email, phone, website,
	ST_Y(location::geometry) AS lat, ST_X(location::geometry) AS lon,
	is_available, verified, created_at, updated_at`

// NGORepo implements ports.NGORepository with pgx.
type NGORepo struct {
	db *DB
}

// NewNGORepo creates a new NGORepo.
func NewNGORepo(db *DB) *NGORepo {
	return &NGORepo{db: db}
}

func scanNGO(row pgx.Row) (domain.NGO, error) {
	var n domain.NGO
	err := row.Scan(
		&n.ID, &n.Name, &n.Description, &n.Address, &n.Email, &n.Phone, &n.Website,
		&n.Location.Lat, &n.Location.Lon,
		&n.IsAvailable, &n.Verified, &n.CreatedAt, &n.UpdatedAt,
	)
	return n, err
}

func collectNGOs(rows pgx.Rows) ([]domain.NGO, error) {
	defer rows.Close()
	ngos := []domain.NGO{}
	for rows.Next() {
		n, err := scanNGO(rows)
		if err != nil {
			return nil, err
		}
		ngos = append(ngos, n)
	}
	return ngos, rows.Err()
}

const insertNGO = `
	INSERT INTO ngos (name, description, address, email, phone, website, location, is_available, verified)
	VALUES ($1, $2, $3, $4, $5, $6, ST_SetSRID(ST_MakePoint($7, $8), 4326)::geography, $9, $10)
	RETURNING id, created_at, updated_at`

// Create inserts an NGO and fills in its id and timestamps.
func (r *NGORepo) Create(ctx context.Context, n *domain.NGO) error {
	err := r.db.Pool.QueryRow(ctx, insertNGO,
		n.Name, n.Description, n.Address, n.Email, n.Phone, n.Website,
		n.Location.Lon, n.Location.Lat, n.IsAvailable, n.Verified,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	return mapErr(err)
}

// CreateBatch inserts many NGOs using pgx.Batch.
func (r *NGORepo) CreateBatch(ctx context.Context, ngos []domain.NGO) error {
	batch := &pgx.Batch{}
	for _, n := range ngos {
		batch.Queue(insertNGO,
			n.Name, n.Description, n.Address, n.Email, n.Phone, n.Website,
			n.Location.Lon, n.Location.Lat, n.IsAvailable, n.Verified)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := range ngos {
		if err := br.QueryRow().Scan(&ngos[i].ID, &ngos[i].CreatedAt, &ngos[i].UpdatedAt); err != nil {
			return fmt.Errorf("batch insert ngo %q: %w", ngos[i].Name, mapErr(err))
		}
	}
	return nil
}

// GetByID returns an NGO by id.
func (r *NGORepo) GetByID(ctx context.Context, id int64) (*domain.NGO, error) {
	n, err := scanNGO(r.db.Pool.QueryRow(ctx, `SELECT `+ngoColumns+` FROM ngos WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &n, nil
}

// List returns a page of NGOs ordered by id.
func (r *NGORepo) List(ctx context.Context, offset, limit int) ([]domain.NGO, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+ngoColumns+` FROM ngos ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectNGOs(rows)
}

// Snapshot returns every NGO from one repeatable-read transaction.
func (r *NGORepo) Snapshot(ctx context.Context) ([]domain.NGO, error) {
	var ngos []domain.NGO
	err := r.db.snapshotTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT `+ngoColumns+` FROM ngos ORDER BY id`)
		if err != nil {
			return err
		}
		ngos, err = collectNGOs(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("ngo snapshot: %w", err)
	}
	return ngos, nil
}

// Update writes every mutable field of n.
func (r *NGORepo) Update(ctx context.Context, n *domain.NGO) error {
	err := r.db.Pool.QueryRow(ctx, `
		UPDATE ngos
		SET name = $2, description = $3, address = $4, email = $5, phone = $6, website = $7,
		    location = ST_SetSRID(ST_MakePoint($8, $9), 4326)::geography,
		    is_available = $10, verified = $11, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, n.ID, n.Name, n.Description, n.Address, n.Email, n.Phone, n.Website,
		n.Location.Lon, n.Location.Lat, n.IsAvailable, n.Verified,
	).Scan(&n.UpdatedAt)
	return mapErr(err)
}

// Delete removes an NGO. Donations assigned to it keep their status but lose
// the reference.
func (r *NGORepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM ngos WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
