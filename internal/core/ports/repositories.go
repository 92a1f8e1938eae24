package ports

import (
	"context"

	"github.com/donamatch/donamatch/internal/core/domain"
)

// NGORepository persists NGOs.
type NGORepository interface {
	Create(ctx context.Context, ngo *domain.NGO) error
	CreateBatch(ctx context.Context, ngos []domain.NGO) error
	GetByID(ctx context.Context, id int64) (*domain.NGO, error)
	List(ctx context.Context, offset, limit int) ([]domain.NGO, error)
	// Snapshot returns every NGO as of a single consistent read.
	Snapshot(ctx context.Context) ([]domain.NGO, error)
	Update(ctx context.Context, ngo *domain.NGO) error
	Delete(ctx context.Context, id int64) error
}

// DonationRepository persists donations.
type DonationRepository interface {
	Create(ctx context.Context, donation *domain.Donation) error
	CreateBatch(ctx context.Context, donations []domain.Donation) error
	GetByID(ctx context.Context, id int64) (*domain.Donation, error)
	// List filters by status when status is non-empty.
	List(ctx context.Context, status domain.DonationStatus, offset, limit int) ([]domain.Donation, error)
	Snapshot(ctx context.Context) ([]domain.Donation, error)
	Update(ctx context.Context, donation *domain.Donation) error
	// Assign sets ngo_id and status=assigned only while the donation is still
	// pending. It returns domain.ErrNotAssignable otherwise.
	Assign(ctx context.Context, donationID, ngoID int64) (*domain.Donation, error)
}
