// Package mocks provides testify mocks of the repository and provider interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/geo"
	"github.com/Josh363/small-business-app/internal/domain/providers"
	"github.com/Josh363/small-business-app/internal/domain/repositories"
	"github.com/Josh363/small-business-app/internal/query"
)

// ret returns argument i as T, or the zero value when it is nil.
func ret[T any](args mock.Arguments, i int) T {
	v, _ := args.Get(i).(T)
	return v
}

// BusinessRepository mocks repositories.BusinessRepository
type BusinessRepository struct{ mock.Mock }

var _ repositories.BusinessRepository = (*BusinessRepository)(nil)

func (m *BusinessRepository) Create(ctx context.Context, business *entities.Business) error {
	return m.Called(ctx, business).Error(0)
}

func (m *BusinessRepository) GetByID(ctx context.Context, id string) (*entities.Business, error) {
	args := m.Called(ctx, id)
	return ret[*entities.Business](args, 0), args.Error(1)
}

func (m *BusinessRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.Business, error) {
	args := m.Called(ctx, ids)
	return ret[[]*entities.Business](args, 0), args.Error(1)
}

func (m *BusinessRepository) CountByOwner(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return ret[int64](args, 0), args.Error(1)
}

func (m *BusinessRepository) Update(ctx context.Context, business *entities.Business) error {
	return m.Called(ctx, business).Error(0)
}

func (m *BusinessRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *BusinessRepository) List(ctx context.Context, spec query.Spec) ([]*entities.Business, int64, error) {
	args := m.Called(ctx, spec)
	return ret[[]*entities.Business](args, 0), ret[int64](args, 1), args.Error(2)
}

func (m *BusinessRepository) ListIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return ret[[]string](args, 0), args.Error(1)
}

func (m *BusinessRepository) WithinRadius(ctx context.Context, center geo.Point, radius float64) ([]*entities.Business, error) {
	args := m.Called(ctx, center, radius)
	return ret[[]*entities.Business](args, 0), args.Error(1)
}

func (m *BusinessRepository) SetAggregate(ctx context.Context, id string, kind entities.StatKind, value *float64) error {
	return m.Called(ctx, id, kind, value).Error(0)
}

// BusinessSearchRepository mocks repositories.BusinessSearchRepository
type BusinessSearchRepository struct{ mock.Mock }

var _ repositories.BusinessSearchRepository = (*BusinessSearchRepository)(nil)

func (m *BusinessSearchRepository) Search(ctx context.Context, params repositories.BusinessSearchParams) ([]string, int64, error) {
	args := m.Called(ctx, params)
	return ret[[]string](args, 0), ret[int64](args, 1), args.Error(2)
}

func (m *BusinessSearchRepository) Index(ctx context.Context, business *entities.Business) error {
	return m.Called(ctx, business).Error(0)
}

func (m *BusinessSearchRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// ServiceRepository mocks repositories.ServiceRepository
type ServiceRepository struct{ mock.Mock }

var _ repositories.ServiceRepository = (*ServiceRepository)(nil)

func (m *ServiceRepository) Create(ctx context.Context, service *entities.Service) error {
	return m.Called(ctx, service).Error(0)
}

func (m *ServiceRepository) GetByID(ctx context.Context, id string) (*entities.Service, error) {
	args := m.Called(ctx, id)
	return ret[*entities.Service](args, 0), args.Error(1)
}

func (m *ServiceRepository) Update(ctx context.Context, service *entities.Service) error {
	return m.Called(ctx, service).Error(0)
}

func (m *ServiceRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ServiceRepository) List(ctx context.Context, spec query.Spec) ([]*entities.Service, int64, error) {
	args := m.Called(ctx, spec)
	return ret[[]*entities.Service](args, 0), ret[int64](args, 1), args.Error(2)
}

func (m *ServiceRepository) ListByBusinessIDs(ctx context.Context, businessIDs []string) ([]*entities.Service, error) {
	args := m.Called(ctx, businessIDs)
	return ret[[]*entities.Service](args, 0), args.Error(1)
}

func (m *ServiceRepository) PriceStats(ctx context.Context, businessID string) (*repositories.ChildStats, error) {
	args := m.Called(ctx, businessID)
	return ret[*repositories.ChildStats](args, 0), args.Error(1)
}

// ReviewRepository mocks repositories.ReviewRepository
type ReviewRepository struct{ mock.Mock }

var _ repositories.ReviewRepository = (*ReviewRepository)(nil)

func (m *ReviewRepository) Create(ctx context.Context, review *entities.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *ReviewRepository) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	args := m.Called(ctx, id)
	return ret[*entities.Review](args, 0), args.Error(1)
}

func (m *ReviewRepository) Update(ctx context.Context, review *entities.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *ReviewRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ReviewRepository) List(ctx context.Context, spec query.Spec) ([]*entities.Review, int64, error) {
	args := m.Called(ctx, spec)
	return ret[[]*entities.Review](args, 0), ret[int64](args, 1), args.Error(2)
}

func (m *ReviewRepository) RatingStats(ctx context.Context, businessID string) (*repositories.ChildStats, error) {
	args := m.Called(ctx, businessID)
	return ret[*repositories.ChildStats](args, 0), args.Error(1)
}

// UserRepository mocks repositories.UserRepository
type UserRepository struct{ mock.Mock }

var _ repositories.UserRepository = (*UserRepository)(nil)

func (m *UserRepository) Create(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	return ret[*entities.User](args, 0), args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	return ret[*entities.User](args, 0), args.Error(1)
}

func (m *UserRepository) GetByResetToken(ctx context.Context, hashedToken string) (*entities.User, error) {
	args := m.Called(ctx, hashedToken)
	return ret[*entities.User](args, 0), args.Error(1)
}

func (m *UserRepository) Update(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *UserRepository) List(ctx context.Context, spec query.Spec) ([]*entities.User, int64, error) {
	args := m.Called(ctx, spec)
	return ret[[]*entities.User](args, 0), ret[int64](args, 1), args.Error(2)
}

// GeolocationProvider mocks providers.GeolocationProvider
type GeolocationProvider struct{ mock.Mock }

var _ providers.GeolocationProvider = (*GeolocationProvider)(nil)

func (m *GeolocationProvider) Geocode(ctx context.Context, address string) (*providers.GeocodedAddress, error) {
	args := m.Called(ctx, address)
	return ret[*providers.GeocodedAddress](args, 0), args.Error(1)
}

func (m *GeolocationProvider) ReverseGeocode(ctx context.Context, lat, lon float64) (*providers.GeocodedAddress, error) {
	args := m.Called(ctx, lat, lon)
	return ret[*providers.GeocodedAddress](args, 0), args.Error(1)
}

// FileStorage mocks providers.FileStorage
type FileStorage struct{ mock.Mock }

var _ providers.FileStorage = (*FileStorage)(nil)

func (m *FileStorage) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, name, contentType, data)
	return args.String(0), args.Error(1)
}

// Mailer mocks providers.Mailer
type Mailer struct{ mock.Mock }

var _ providers.Mailer = (*Mailer)(nil)

func (m *Mailer) Send(ctx context.Context, msg providers.Message) error {
	return m.Called(ctx, msg).Error(0)
}

// EventBus mocks providers.EventBus
type EventBus struct{ mock.Mock }

var _ providers.EventBus = (*EventBus)(nil)

func (m *EventBus) Publish(ctx context.Context, channel string, event *entities.BusinessEvent) error {
	return m.Called(ctx, channel, event).Error(0)
}

func (m *EventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.BusinessEvent, error) {
	args := m.Called(ctx, channel)
	return ret[<-chan *entities.BusinessEvent](args, 0), args.Error(1)
}

func (m *EventBus) Unsubscribe(ctx context.Context, channel string) error {
	return m.Called(ctx, channel).Error(0)
}

func (m *EventBus) Close() error {
	return m.Called().Error(0)
}

// CacheProvider mocks providers.CacheProvider
type CacheProvider struct{ mock.Mock }

var _ providers.CacheProvider = (*CacheProvider)(nil)

func (m *CacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	return ret[[]byte](args, 0), args.Error(1)
}

func (m *CacheProvider) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	return m.Called(ctx, key, value, expirationSeconds).Error(0)
}

func (m *CacheProvider) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *CacheProvider) DeletePattern(ctx context.Context, pattern string) error {
	return m.Called(ctx, pattern).Error(0)
}

func (m *CacheProvider) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}
