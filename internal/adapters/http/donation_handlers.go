package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/donamatch/donamatch/internal/core/domain"
	"github.com/donamatch/donamatch/internal/core/proximity"
)

type createDonationRequest struct {
	Title       string              `json:"title" validate:"required,max=200"`
	Description string              `json:"description" validate:"max=2000"`
	Type        domain.DonationType `json:"donation_type" validate:"required,donation_type"`
	DonorName   string              `json:"donor_name" validate:"required,max=200"`
	DonorEmail  string              `json:"donor_email" validate:"required,email"`
	DonorPhone  string              `json:"donor_phone" validate:"max=32"`
	Address     string              `json:"address" validate:"required,max=500"`
	Location    *domain.GeoPoint    `json:"location" validate:"required"`
}

func (r createDonationRequest) toDonation() *domain.Donation {
	return &domain.Donation{
		Title:       r.Title,
		Description: r.Description,
		Type:        r.Type,
		DonorName:   r.DonorName,
		DonorEmail:  r.DonorEmail,
		DonorPhone:  r.DonorPhone,
		Address:     r.Address,
		Location:    *r.Location,
	}
}

type updateDonationRequest struct {
	Title       *string                `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string                `json:"description" validate:"omitempty,max=2000"`
	Type        *domain.DonationType   `json:"donation_type" validate:"omitempty,donation_type"`
	Status      *domain.DonationStatus `json:"status" validate:"omitempty,donation_status"`
	NGOID       *int64                 `json:"ngo_id" validate:"omitempty,gt=0"`
}

func (r updateDonationRequest) toUpdate() domain.DonationUpdate {
	return domain.DonationUpdate{
		Title:       r.Title,
		Description: r.Description,
		Type:        r.Type,
		Status:      r.Status,
		NGOID:       r.NGOID,
	}
}

type assignDonationRequest struct {
	NGOID int64 `json:"ngo_id" validate:"required,gt=0"`
}

// CreateDonationHandler records a new pending donation.
func CreateDonationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createDonationRequest
		if err := parseBody(c, &req); err != nil {
			return errBadRequest(c, err.Error())
		}
		d := req.toDonation()
		if err := deps.Donations.Create(c.UserContext(), d); err != nil {
			return errFromDomain(c, err)
		}
		c.Location("/v1/donations/" + strconv.FormatInt(d.ID, 10))
		return c.Status(fiber.StatusCreated).JSON(d)
	}
}

// ListDonationsHandler returns a page of donations, optionally filtered by status.
func ListDonationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pageParams(c)
		status := domain.DonationStatus(c.Query("status"))
		donations, err := deps.Donations.List(c.UserContext(), status, offset, limit)
		if err != nil {
			return errFromDomain(c, err)
		}
		if donations == nil {
			donations = []domain.Donation{}
		}
		pg := newPagination(offset, limit, len(donations))
		if status != "" {
			SetLinkHeaders(c, pg, "status="+string(status))
		} else {
			SetLinkHeaders(c, pg)
		}
		return c.JSON(PaginatedResponse{Data: donations, Pagination: pg})
	}
}

// GetDonationHandler returns a single donation by id.
func GetDonationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		d, err := deps.Donations.GetByID(c.UserContext(), id)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(d)
	}
}

// UpdateDonationHandler applies a partial update to a donation.
func UpdateDonationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		var req updateDonationRequest
		if err := parseBody(c, &req); err != nil {
			return errBadRequest(c, err.Error())
		}
		d, err := deps.Donations.Update(c.UserContext(), id, req.toUpdate())
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(d)
	}
}

// NearbyDonationsHandler returns donations within radius_km of (lat, lng).
// With the default available_only=true only pending donations are returned.
func NearbyDonationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parseNearbyQuery(c, deps.searchLimits())
		if err != nil {
			return errFromDomain(c, err)
		}
		res, err := deps.Donations.Nearby(c.UserContext(), q)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(nearbyDonations(res))
	}
}

// AssignDonationHandler hands a pending donation to an available NGO.
func AssignDonationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		var req assignDonationRequest
		if err := parseBody(c, &req); err != nil {
			return errBadRequest(c, err.Error())
		}
		d, err := deps.Donations.Assign(c.UserContext(), id, req.NGOID)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(d)
	}
}

// DonationMatchesHandler returns the available NGOs nearest to a donation.
func DonationMatchesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		limits := deps.searchLimits()
		radius, err := parseRadius(c, limits)
		if err != nil {
			return errFromDomain(c, err)
		}
		limit, err := parseLimit(c, limits)
		if err != nil {
			return errFromDomain(c, err)
		}
		unit, err := proximity.ParseUnit(c.Query("unit"))
		if err != nil {
			return errFromDomain(c, err)
		}
		res, err := deps.Donations.Matches(c.UserContext(), id, radius, limit, unit)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(nearbyNGOs(res))
	}
}
