package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/donamatch/donamatch/internal/core/domain"
)

type createNGORequest struct {
	Name        string           `json:"name" validate:"required,max=200"`
	Description string           `json:"description" validate:"max=2000"`
	Address     string           `json:"address" validate:"required,max=500"`
	Email       string           `json:"email" validate:"required,email"`
	Phone       string           `json:"phone" validate:"max=32"`
	Website     string           `json:"website" validate:"omitempty,url"`
	Location    *domain.GeoPoint `json:"location" validate:"required"`
}

func (r createNGORequest) toNGO() *domain.NGO {
	return &domain.NGO{
		Name:        r.Name,
		Description: r.Description,
		Address:     r.Address,
		Email:       r.Email,
		Phone:       r.Phone,
		Website:     r.Website,
		Location:    *r.Location,
	}
}

type updateNGORequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Address     *string          `json:"address" validate:"omitempty,min=1,max=500"`
	Email       *string          `json:"email" validate:"omitempty,email"`
	Phone       *string          `json:"phone" validate:"omitempty,max=32"`
	Website     *string          `json:"website" validate:"omitempty,url"`
	Location    *domain.GeoPoint `json:"location"`
	IsAvailable *bool            `json:"is_available"`
	Verified    *bool            `json:"verified"`
}

func (r updateNGORequest) toUpdate() domain.NGOUpdate {
	return domain.NGOUpdate{
		Name:        r.Name,
		Description: r.Description,
		Address:     r.Address,
		Email:       r.Email,
		Phone:       r.Phone,
		Website:     r.Website,
		Location:    r.Location,
		IsAvailable: r.IsAvailable,
		Verified:    r.Verified,
	}
}

// CreateNGOHandler registers a new NGO.
func CreateNGOHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createNGORequest
		if err := parseBody(c, &req); err != nil {
			return errBadRequest(c, err.Error())
		}
		ngo := req.toNGO()
		if err := deps.NGOs.Create(c.UserContext(), ngo); err != nil {
			return errFromDomain(c, err)
		}
		c.Location("/v1/ngos/" + strconv.FormatInt(ngo.ID, 10))
		return c.Status(fiber.StatusCreated).JSON(ngo)
	}
}

// ListNGOsHandler returns a page of NGOs.
func ListNGOsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pageParams(c)
		ngos, err := deps.NGOs.List(c.UserContext(), offset, limit)
		if err != nil {
			return errFromDomain(c, err)
		}
		if ngos == nil {
			ngos = []domain.NGO{}
		}
		pg := newPagination(offset, limit, len(ngos))
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: ngos, Pagination: pg})
	}
}

// GetNGOHandler returns a single NGO by id.
func GetNGOHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		ngo, err := deps.NGOs.GetByID(c.UserContext(), id)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(ngo)
	}
}

// UpdateNGOHandler applies a partial update to an NGO.
func UpdateNGOHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		var req updateNGORequest
		if err := parseBody(c, &req); err != nil {
			return errBadRequest(c, err.Error())
		}
		ngo, err := deps.NGOs.Update(c.UserContext(), id, req.toUpdate())
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(ngo)
	}
}

// DeleteNGOHandler removes an NGO.
func DeleteNGOHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if err := deps.NGOs.Delete(c.UserContext(), id); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// NearbyNGOsHandler returns NGOs within radius_km of (lat, lng), nearest
// first. Only available NGOs are returned unless available_only=false.
func NearbyNGOsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parseNearbyQuery(c, deps.searchLimits())
		if err != nil {
			return errFromDomain(c, err)
		}
		res, err := deps.NGOs.Nearby(c.UserContext(), q)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(nearbyNGOs(res))
	}
}
