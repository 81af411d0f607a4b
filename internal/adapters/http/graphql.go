package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/krili-app/krili/internal/core/domain"
	"github.com/krili-app/krili/internal/core/ports"
)

// buildSchema creates the GraphQL schema wired to our services. Queries cover
// the public read surface; writes stay on REST.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	universityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "University",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: geoPointType},
			"address":  &graphql.Field{Type: graphql.String},
		},
	})

	photoType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ListingPhoto",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.String},
			"path":    &graphql.Field{Type: graphql.String},
			"is_main": &graphql.Field{Type: graphql.Boolean},
		},
	})

	listingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Listing",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"title":        &graphql.Field{Type: graphql.String},
			"description":  &graphql.Field{Type: graphql.String},
			"address":      &graphql.Field{Type: graphql.String},
			"location":     &graphql.Field{Type: geoPointType},
			"price":        &graphql.Field{Type: graphql.Float},
			"surface":      &graphql.Field{Type: graphql.Int},
			"rooms":        &graphql.Field{Type: graphql.Int},
			"bathrooms":    &graphql.Field{Type: graphql.Int},
			"type":         &graphql.Field{Type: graphql.String},
			"is_furnished": &graphql.Field{Type: graphql.Boolean},
			"has_kitchen":  &graphql.Field{Type: graphql.Boolean},
			"has_wifi":     &graphql.Field{Type: graphql.Boolean},
			"has_parking":  &graphql.Field{Type: graphql.Boolean},
			"distance_km":  &graphql.Field{Type: graphql.Float},
			"photos":       &graphql.Field{Type: graphql.NewList(photoType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"universities": &graphql.Field{
				Type:        graphql.NewList(universityType),
				Description: "List all universities in the campus catalog",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Universities.List(p.Context)
				},
			},
			"listing": &graphql.Field{
				Type:        listingType,
				Description: "Get a listing by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Listings.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"listings": &graphql.Field{
				Type:        graphql.NewList(listingType),
				Description: "Search approved listings",
				Args: graphql.FieldConfigArgument{
					"type":      &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"max_price": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"rooms":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					filter := ports.ListingFilter{
						Type:     domain.ListingType(p.Args["type"].(string)),
						MaxPrice: p.Args["max_price"].(float64),
						Rooms:    p.Args["rooms"].(int),
						Limit:    p.Args["limit"].(int),
					}
					listings, _, err := deps.Listings.Search(p.Context, filter)
					return listings, err
				},
			},
			"listingsNearby": &graphql.Field{
				Type:        graphql.NewList(listingType),
				Description: "Find approved listings near a campus or a point",
				Args: graphql.FieldConfigArgument{
					"university_id": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"lat":           &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"lon":           &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"radius_km":     &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"limit":         &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var userLoc *domain.GeoPoint
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					if lat != 0 || lon != 0 {
						userLoc = &domain.GeoPoint{Lat: lat, Lon: lon}
					}
					listings, _, err := deps.Listings.FindNearby(p.Context,
						p.Args["university_id"].(string), userLoc,
						p.Args["radius_km"].(float64), p.Args["limit"].(int))
					return listings, err
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
