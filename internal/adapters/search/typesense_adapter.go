package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/repositories"
	tsclient "github.com/Josh363/small-business-app/internal/infrastructure/clients/typesense"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

const (
	queryBy         = "name,description,city"
	defaultPerPage  = 20
	maxTypesensePer = 250
)

// TypesenseAdapter implements business search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

var _ repositories.BusinessSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// businessDocument flattens a business into its index document
func businessDocument(b *entities.Business) map[string]interface{} {
	doc := map[string]interface{}{
		"id":          b.ID,
		"name":        b.Name,
		"description": b.Description,
		"location":    []float64{b.Location.Latitude, b.Location.Longitude},
		"created_at":  b.CreatedAt.Unix(),
	}
	if b.Location.City != "" {
		doc["city"] = b.Location.City
	}
	if b.Location.State != "" {
		doc["state"] = b.Location.State
	}
	if b.Location.Zipcode != "" {
		doc["zipcode"] = b.Location.Zipcode
	}
	if b.AverageRating != nil {
		doc["average_rating"] = *b.AverageRating
	}
	if b.AverageCost != nil {
		doc["average_cost"] = *b.AverageCost
	}
	return doc
}

// buildFilter renders the filter_by clause for params
func buildFilter(params repositories.BusinessSearchParams) string {
	var parts []string
	if city := strings.TrimSpace(params.City); city != "" {
		parts = append(parts, fmt.Sprintf("city:=`%s`", strings.ReplaceAll(city, "`", "")))
	}
	if params.MinRate != nil {
		parts = append(parts, fmt.Sprintf("average_rating:>=%g", *params.MinRate))
	}
	return strings.Join(parts, " && ")
}

// Index upserts a business document
func (a *TypesenseAdapter) Index(ctx context.Context, business *entities.Business) error {
	_, err := a.client.Client().Collection(tsclient.BusinessesCollection).Documents().Upsert(ctx, businessDocument(business))
	if err != nil {
		return apperrors.NewExternalError("failed to index business", err)
	}
	return nil
}

// Delete removes a business from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(tsclient.BusinessesCollection).Document(id).Delete(ctx)
	if err != nil {
		return apperrors.NewExternalError("failed to delete business from index", err)
	}
	return nil
}

// Search returns matching business ids in relevance order and the hit count
func (a *TypesenseAdapter) Search(ctx context.Context, params repositories.BusinessSearchParams) ([]string, int64, error) {
	q := strings.TrimSpace(params.Query)
	if q == "" {
		q = "*"
	}
	page := params.Page
	if page < 1 {
		page = 1
	}
	perPage := params.Limit
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxTypesensePer {
		perPage = maxTypesensePer
	}

	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(q),
		QueryBy: pointer.String(queryBy),
		Page:    pointer.Int(page),
		PerPage: pointer.Int(perPage),
	}
	if filter := buildFilter(params); filter != "" {
		searchParams.FilterBy = pointer.String(filter)
	}

	result, err := a.client.Client().Collection(tsclient.BusinessesCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, 0, apperrors.NewExternalError("failed to search businesses", err)
	}

	var found int64
	if result.Found != nil {
		found = int64(*result.Found)
	}
	if result.Hits == nil {
		return []string{}, found, nil
	}

	ids := make([]string, 0, len(*result.Hits))
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		if id, ok := (*hit.Document)["id"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, found, nil
}
