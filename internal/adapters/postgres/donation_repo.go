package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/donamatch/donamatch/internal/core/domain"
)

const donationColumns = `id, title, description, donation_type, donor_name, donor_email, donor_phone, address,
	ST_Y(location::geometry) AS lat, ST_X(location::geometry) AS lon,
	status, ngo_id, created_at, updated_at`

// DonationRepo implements ports.DonationRepository with pgx.
type DonationRepo struct {
	db *DB
}

// NewDonationRepo creates a new DonationRepo.
func NewDonationRepo(db *DB) *DonationRepo {
	return &DonationRepo{db: db}
}

func scanDonation(row pgx.Row) (domain.Donation, error) {
	var d domain.Donation
	err := row.Scan(
		&d.ID, &d.Title, &d.Description, &d.Type, &d.DonorName, &d.DonorEmail, &d.DonorPhone, &d.Address,
		&d.Location.Lat, &d.Location.Lon,
		&d.Status, &d.NGOID, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

func collectDonations(rows pgx.Rows) ([]domain.Donation, error) {
	defer rows.Close()
	out := []domain.Donation{}
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

const insertDonation = `
	INSERT INTO donations (title, description, donation_type, donor_name, donor_email, donor_phone, address, location, status, ngo_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, ST_SetSRID(ST_MakePoint($8, $9), 4326)::geography, $10, $11)
	RETURNING id, created_at, updated_at`

func donationArgs(d *domain.Donation) []any {
	return []any{
		d.Title, d.Description, d.Type, d.DonorName, d.DonorEmail, d.DonorPhone, d.Address,
		d.Location.Lon, d.Location.Lat, d.Status, d.NGOID,
	}
}

// Create inserts a donation and fills in its id and timestamps.
func (r *DonationRepo) Create(ctx context.Context, d *domain.Donation) error {
	err := r.db.Pool.QueryRow(ctx, insertDonation, donationArgs(d)...).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	return mapErr(err)
}

// CreateBatch inserts many donations using pgx.Batch.
func (r *DonationRepo) CreateBatch(ctx context.Context, donations []domain.Donation) error {
	batch := &pgx.Batch{}
	for i := range donations {
		batch.Queue(insertDonation, donationArgs(&donations[i])...)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := range donations {
		d := &donations[i]
		if err := br.QueryRow().Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return fmt.Errorf("batch insert donation %q: %w", d.Title, mapErr(err))
		}
	}
	return nil
}

// GetByID returns a donation by id.
func (r *DonationRepo) GetByID(ctx context.Context, id int64) (*domain.Donation, error) {
	d, err := scanDonation(r.db.Pool.QueryRow(ctx, `SELECT `+donationColumns+` FROM donations WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &d, nil
}

// List returns a page of donations, newest first, filtered by status if set.
func (r *DonationRepo) List(ctx context.Context, status domain.DonationStatus, offset, limit int) ([]domain.Donation, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+donationColumns+` FROM donations
		WHERE ($1::text = '' OR status = $1::text)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, string(status), limit, offset)
	if err != nil {
		return nil, err
	}
	return collectDonations(rows)
}

// Snapshot returns every donation from one repeatable-read transaction.
func (r *DonationRepo) Snapshot(ctx context.Context) ([]domain.Donation, error) {
	var out []domain.Donation
	err := r.db.snapshotTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT `+donationColumns+` FROM donations ORDER BY id`)
		if err != nil {
			return err
		}
		out, err = collectDonations(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("donation snapshot: %w", err)
	}
	return out, nil
}

// Update writes the mutable fields of d. Location and donor details are fixed
// at intake.
func (r *DonationRepo) Update(ctx context.Context, d *domain.Donation) error {
	err := r.db.Pool.QueryRow(ctx, `
		UPDATE donations
		SET title = $2, description = $3, donation_type = $4, status = $5, ngo_id = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, d.ID, d.Title, d.Description, d.Type, d.Status, d.NGOID).Scan(&d.UpdatedAt)
	return mapErr(err)
}

// Assign moves a pending donation to assigned in one conditional UPDATE, so
// two concurrent assignments cannot both succeed.
func (r *DonationRepo) Assign(ctx context.Context, donationID, ngoID int64) (*domain.Donation, error) {
	d, err := scanDonation(r.db.Pool.QueryRow(ctx, `
		UPDATE donations
		SET ngo_id = $2, status = 'assigned', updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+donationColumns,
		donationID, ngoID))
	if err == nil {
		return &d, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapErr(err)
	}

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM donations WHERE id = $1)`, donationID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	return nil, domain.ErrNotAssignable
}
