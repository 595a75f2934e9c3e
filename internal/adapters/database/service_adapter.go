package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/repositories"
	"github.com/Josh363/small-business-app/internal/infrastructure/clients/postgres"
	"github.com/Josh363/small-business-app/internal/query"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

const servicesTable = "services"

var serviceColumns = []interface{}{
	"id", "name", "description", "price", "service_type", "credit_available",
	"business_id", "user_id", "created_at",
}

type serviceRow struct {
	ID              string    `db:"id"`
	Name            string    `db:"name"`
	Description     string    `db:"description"`
	Price           float64   `db:"price"`
	ServiceType     string    `db:"service_type"`
	CreditAvailable bool      `db:"credit_available"`
	BusinessID      string    `db:"business_id"`
	UserID          string    `db:"user_id"`
	CreatedAt       time.Time `db:"created_at"`
}

func (r serviceRow) toEntity() *entities.Service {
	return &entities.Service{
		ID:              r.ID,
		Name:            r.Name,
		Description:     r.Description,
		Price:           r.Price,
		ServiceType:     r.ServiceType,
		CreditAvailable: r.CreditAvailable,
		BusinessID:      r.BusinessID,
		UserID:          r.UserID,
		CreatedAt:       r.CreatedAt,
	}
}

func toServices(rows []serviceRow) []*entities.Service {
	out := make([]*entities.Service, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toEntity())
	}
	return out
}

// ServiceAdapter implements the ServiceRepository interface
type ServiceAdapter struct {
	client *postgres.Client
}

// NewServiceAdapter creates a new service adapter
func NewServiceAdapter(client *postgres.Client) repositories.ServiceRepository {
	return &ServiceAdapter{client: client}
}

// Create creates a new service
func (a *ServiceAdapter) Create(ctx context.Context, service *entities.Service) error {
	q, args, err := dialect.Insert(servicesTable).Prepared(true).Rows(goqu.Record{
		"id":               service.ID,
		"name":             service.Name,
		"description":      service.Description,
		"price":            service.Price,
		"service_type":     service.ServiceType,
		"credit_available": service.CreditAvailable,
		"business_id":      service.BusinessID,
		"user_id":          service.UserID,
		"created_at":       service.CreatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build service insert query", err)
	}
	if _, err := a.client.DBX().ExecContext(ctx, q, args...); err != nil {
		return mapWriteError(err, "create service")
	}
	return nil
}

// GetByID retrieves a service by ID
func (a *ServiceAdapter) GetByID(ctx context.Context, id string) (*entities.Service, error) {
	row, err := getOne[serviceRow](ctx, a.client.DBX(), servicesTable, serviceColumns, id, "Service")
	if err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

// Update writes the editable fields of a service
func (a *ServiceAdapter) Update(ctx context.Context, service *entities.Service) error {
	q, args, err := dialect.Update(servicesTable).Prepared(true).
		Set(goqu.Record{
			"name":             service.Name,
			"description":      service.Description,
			"price":            service.Price,
			"service_type":     service.ServiceType,
			"credit_available": service.CreditAvailable,
		}).
		Where(goqu.C("id").Eq(service.ID)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build service update query", err)
	}

	res, err := a.client.DBX().ExecContext(ctx, q, args...)
	if err != nil {
		return mapWriteError(err, "update service")
	}
	return expectAffected(res, "Service", service.ID)
}

// Delete deletes a service
func (a *ServiceAdapter) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, a.client.DBX(), servicesTable, id, "Service")
}

// List returns one page of services and the filtered total
func (a *ServiceAdapter) List(ctx context.Context, spec query.Spec) ([]*entities.Service, int64, error) {
	rows, total, err := listPage[serviceRow](ctx, a.client.DBX(), servicesTable, serviceColumns, spec)
	if err != nil {
		return nil, 0, err
	}
	return toServices(rows), total, nil
}

// ListByBusinessIDs returns every service of the given businesses
func (a *ServiceAdapter) ListByBusinessIDs(ctx context.Context, businessIDs []string) ([]*entities.Service, error) {
	if len(businessIDs) == 0 {
		return []*entities.Service{}, nil
	}
	q, args, err := from(servicesTable).
		Select(serviceColumns...).
		Where(goqu.C("business_id").In(businessIDs)).
		Order(goqu.C("created_at").Asc(), goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build services query", err)
	}

	var rows []serviceRow
	if err := a.client.DBX().SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list services by business", err)
	}
	return toServices(rows), nil
}

// PriceStats averages the prices of a business's services
func (a *ServiceAdapter) PriceStats(ctx context.Context, businessID string) (*repositories.ChildStats, error) {
	mean, count, err := childStats(ctx, a.client.DBX(), servicesTable, "price", businessID)
	if err != nil {
		return nil, err
	}
	return &repositories.ChildStats{BusinessID: businessID, Mean: mean, Count: count}, nil
}
