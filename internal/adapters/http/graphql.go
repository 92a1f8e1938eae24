package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/donamatch/donamatch/internal/core/domain"
	"github.com/donamatch/donamatch/internal/core/proximity"
	"github.com/donamatch/donamatch/internal/pkg/geospatial"
)

func geoPointOf(src interface{}) (domain.GeoPoint, bool) {
	switch p := src.(type) {
	case domain.GeoPoint:
		return p, true
	case *domain.GeoPoint:
		if p != nil {
			return *p, true
		}
	}
	return domain.GeoPoint{}, false
}

// matchRows flattens proximity matches for GraphQL under the given key.
func matchRows[E proximity.Entity](key string, res proximity.Result[E]) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, res.Len())
	for _, m := range res.Matches {
		rows = append(rows, map[string]interface{}{
			key:               m.Entity,
			"distance_meters": m.Meters,
			"distance_km":     geospatial.MetersToKm(m.Meters),
		})
	}
	return rows
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	limits := deps.searchLimits()

	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				pt, ok := geoPointOf(p.Source)
				if !ok {
					return nil, nil
				}
				return pt.Lat, nil
			}},
			"lon": &graphql.Field{Type: graphql.Float, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				pt, ok := geoPointOf(p.Source)
				if !ok {
					return nil, nil
				}
				return pt.Lon, nil
			}},
		},
	})

	ngoType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NGO",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.Int},
			"name":         &graphql.Field{Type: graphql.String},
			"description":  &graphql.Field{Type: graphql.String},
			"address":      &graphql.Field{Type: graphql.String},
			"email":        &graphql.Field{Type: graphql.String},
			"phone":        &graphql.Field{Type: graphql.String},
			"website":      &graphql.Field{Type: graphql.String},
			"location":     &graphql.Field{Type: geoPointType},
			"is_available": &graphql.Field{Type: graphql.Boolean},
			"verified":     &graphql.Field{Type: graphql.Boolean},
			"created_at":   &graphql.Field{Type: graphql.DateTime},
		},
	})

	donationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Donation",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.Int},
			"title":         &graphql.Field{Type: graphql.String},
			"description":   &graphql.Field{Type: graphql.String},
			"donation_type": &graphql.Field{Type: graphql.String},
			"donor_name":    &graphql.Field{Type: graphql.String},
			"address":       &graphql.Field{Type: graphql.String},
			"location":      &graphql.Field{Type: geoPointType},
			"status":        &graphql.Field{Type: graphql.String},
			"ngo_id": &graphql.Field{Type: graphql.Int, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				var d domain.Donation
				switch v := p.Source.(type) {
				case domain.Donation:
					d = v
				case *domain.Donation:
					d = *v
				}
				if d.NGOID == nil {
					return nil, nil
				}
				return *d.NGOID, nil
			}},
			"created_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	nearbyNGOType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NearbyNGO",
		Fields: graphql.Fields{
			"ngo":             &graphql.Field{Type: ngoType},
			"distance_meters": &graphql.Field{Type: graphql.Float},
			"distance_km":     &graphql.Field{Type: graphql.Float},
		},
	})

	nearbyDonationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NearbyDonation",
		Fields: graphql.Fields{
			"donation":        &graphql.Field{Type: donationType},
			"distance_meters": &graphql.Field{Type: graphql.Float},
			"distance_km":     &graphql.Field{Type: graphql.Float},
		},
	})

	nearbyArgs := func() graphql.FieldConfigArgument {
		return graphql.FieldConfigArgument{
			"lat":            &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
			"lon":            &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
			"radius_km":      &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: limits.DefaultRadiusKm},
			"available_only": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: true},
			"limit":          &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: limits.DefaultLimit},
		}
	}

	nearbyQuery := func(args map[string]interface{}) (proximity.Query, error) {
		radiusKm, _ := args["radius_km"].(float64)
		if radiusKm > limits.MaxRadiusKm {
			return proximity.Query{}, fmt.Errorf("%w: radius_km must be at most %g", proximity.ErrInvalidQuery, limits.MaxRadiusKm)
		}
		limit, _ := args["limit"].(int)
		limit = clampLimit(limit, limits.MaxLimit)
		avail := proximity.Any
		if only, _ := args["available_only"].(bool); only {
			avail = proximity.AvailableOnly
		}
		lat, _ := args["lat"].(float64)
		lon, _ := args["lon"].(float64)
		return proximity.Query{
			Center:       domain.NewGeoPoint(lat, lon),
			RadiusMeters: geospatial.KmToMeters(radiusKm),
			Availability: avail,
			Limit:        limit,
			Unit:         proximity.Meters,
		}, nil
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"ngo": &graphql.Field{
				Type:        ngoType,
				Description: "Get an NGO by id",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.NGOs.GetByID(p.Context, int64(p.Args["id"].(int)))
				},
			},
			"donation": &graphql.Field{
				Type:        donationType,
				Description: "Get a donation by id",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Donations.GetByID(p.Context, int64(p.Args["id"].(int)))
				},
			},
			"nearbyNGOs": &graphql.Field{
				Type:        graphql.NewList(nearbyNGOType),
				Description: "NGOs within radius_km of a point, nearest first",
				Args:        nearbyArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q, err := nearbyQuery(p.Args)
					if err != nil {
						return nil, err
					}
					res, err := deps.NGOs.Nearby(p.Context, q)
					if err != nil {
						return nil, err
					}
					return matchRows("ngo", res), nil
				},
			},
			"nearbyDonations": &graphql.Field{
				Type:        graphql.NewList(nearbyDonationType),
				Description: "Donations within radius_km of a point, nearest first",
				Args:        nearbyArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q, err := nearbyQuery(p.Args)
					if err != nil {
						return nil, err
					}
					res, err := deps.Donations.Nearby(p.Context, q)
					if err != nil {
						return nil, err
					}
					return matchRows("donation", res), nil
				},
			},
			"donationMatches": &graphql.Field{
				Type:        graphql.NewList(nearbyNGOType),
				Description: "Available NGOs nearest to a donation",
				Args: graphql.FieldConfigArgument{
					"id":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"radius_km": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: limits.DefaultRadiusKm},
					"limit":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: limits.DefaultLimit},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					radiusKm, _ := p.Args["radius_km"].(float64)
					if radiusKm > limits.MaxRadiusKm {
						return nil, fmt.Errorf("%w: radius_km must be at most %g", proximity.ErrInvalidQuery, limits.MaxRadiusKm)
					}
					limit, _ := p.Args["limit"].(int)
					res, err := deps.Donations.Matches(p.Context, int64(p.Args["id"].(int)),
						geospatial.KmToMeters(radiusKm), clampLimit(limit, limits.MaxLimit), proximity.Meters)
					if err != nil {
						return nil, err
					}
					return matchRows("ngo", res), nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"assignDonation": &graphql.Field{
				Type:        donationType,
				Description: "Assign a pending donation to an available NGO",
				Args: graphql.FieldConfigArgument{
					"donation_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"ngo_id":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Donations.Assign(p.Context,
						int64(p.Args["donation_id"].(int)), int64(p.Args["ngo_id"].(int)))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// Programming error in the schema definition.
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil || req.Query == "" {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}

// clampLimit caps a GraphQL limit argument. Zero or negative means the cap,
// as it does for the REST limit parameter.
func clampLimit(limit, maxLimit int) int {
	if limit <= 0 || limit > maxLimit {
		return maxLimit
	}
	return limit
}
