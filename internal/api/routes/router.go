package routes

import (
	"net/http"

	"github.com/justinas/alice"

	"github.com/Josh363/small-business-app/internal/api/handlers"
	"github.com/Josh363/small-business-app/internal/api/middleware"
	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/infrastructure/observability"
)

// Router holds all route handlers and the middleware they share
type Router struct {
	mux *http.ServeMux

	businessHandler    *handlers.BusinessHandler
	serviceHandler     *handlers.ServiceHandler
	reviewHandler      *handlers.ReviewHandler
	authHandler        *handlers.AuthHandler
	userHandler        *handlers.UserHandler
	geolocationHandler *handlers.GeolocationHandler
	healthHandler      *handlers.HealthHandler

	authenticator   middleware.Authenticator
	rateLimiter     *middleware.RateLimiter
	cacheMiddleware *middleware.CacheMiddleware
	loaders         alice.Constructor
	metrics         *observability.Metrics

	allowedOrigins []string
	maxBodyBytes   int64
	uploadDir      string
}

// Options collects everything the router wires together. CacheMiddleware,
// Loaders, GeolocationHandler and UploadDir are optional.
type Options struct {
	BusinessHandler    *handlers.BusinessHandler
	ServiceHandler     *handlers.ServiceHandler
	ReviewHandler      *handlers.ReviewHandler
	AuthHandler        *handlers.AuthHandler
	UserHandler        *handlers.UserHandler
	GeolocationHandler *handlers.GeolocationHandler
	HealthHandler      *handlers.HealthHandler

	Authenticator   middleware.Authenticator
	RateLimiter     *middleware.RateLimiter
	CacheMiddleware *middleware.CacheMiddleware
	Loaders         alice.Constructor
	Metrics         *observability.Metrics

	AllowedOrigins []string
	MaxBodyBytes   int64
	UploadDir      string
}

// NewRouter creates a new router
func NewRouter(opts Options) *Router {
	return &Router{
		mux: http.NewServeMux(),

		businessHandler:    opts.BusinessHandler,
		serviceHandler:     opts.ServiceHandler,
		reviewHandler:      opts.ReviewHandler,
		authHandler:        opts.AuthHandler,
		userHandler:        opts.UserHandler,
		geolocationHandler: opts.GeolocationHandler,
		healthHandler:      opts.HealthHandler,

		authenticator:   opts.Authenticator,
		rateLimiter:     opts.RateLimiter,
		cacheMiddleware: opts.CacheMiddleware,
		loaders:         opts.Loaders,
		metrics:         opts.Metrics,

		allowedOrigins: opts.AllowedOrigins,
		maxBodyBytes:   opts.MaxBodyBytes,
		uploadDir:      opts.UploadDir,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	protect := alice.New(middleware.Protect(r.authenticator))
	publishers := protect.Append(middleware.Authorize(entities.RolePublisher, entities.RoleAdmin))
	admins := protect.Append(middleware.Authorize(entities.RoleAdmin))

	r.mux.HandleFunc("GET /api/v1/health", r.healthHandler.Health)

	// Businesses
	b := r.businessHandler
	r.mux.HandleFunc("GET /api/v1/businesses", b.ListBusinesses)
	r.mux.HandleFunc("GET /api/v1/businesses/search", b.SearchBusinesses)
	r.mux.HandleFunc("GET /api/v1/businesses/radius/{zipcode}/{distance}", b.GetBusinessesInRadius)
	r.mux.HandleFunc("GET /api/v1/businesses/{id}", b.GetBusiness)
	r.mux.Handle("POST /api/v1/businesses", publishers.ThenFunc(b.CreateBusiness))
	r.mux.Handle("PUT /api/v1/businesses/{id}", publishers.ThenFunc(b.UpdateBusiness))
	r.mux.Handle("DELETE /api/v1/businesses/{id}", publishers.ThenFunc(b.DeleteBusiness))
	r.mux.Handle("PUT /api/v1/businesses/{id}/photo", publishers.ThenFunc(b.UploadPhoto))

	// Services
	s := r.serviceHandler
	r.mux.HandleFunc("GET /api/v1/services", s.ListServices)
	r.mux.HandleFunc("GET /api/v1/services/{id}", s.GetService)
	r.mux.HandleFunc("GET /api/v1/businesses/{businessId}/services", s.ListBusinessServices)
	r.mux.Handle("POST /api/v1/businesses/{businessId}/services", publishers.ThenFunc(s.CreateService))
	r.mux.Handle("PUT /api/v1/services/{id}", publishers.ThenFunc(s.UpdateService))
	r.mux.Handle("DELETE /api/v1/services/{id}", publishers.ThenFunc(s.DeleteService))

	// Reviews; ownership of the business or the review is checked by the service
	rv := r.reviewHandler
	r.mux.HandleFunc("GET /api/v1/reviews", rv.ListReviews)
	r.mux.HandleFunc("GET /api/v1/reviews/{id}", rv.GetReview)
	r.mux.HandleFunc("GET /api/v1/businesses/{businessId}/reviews", rv.ListBusinessReviews)
	r.mux.Handle("POST /api/v1/businesses/{businessId}/reviews", protect.ThenFunc(rv.CreateReview))
	r.mux.Handle("PUT /api/v1/reviews/{id}", protect.ThenFunc(rv.UpdateReview))
	r.mux.Handle("DELETE /api/v1/reviews/{id}", protect.ThenFunc(rv.DeleteReview))

	// Auth
	a := r.authHandler
	r.mux.HandleFunc("POST /api/v1/auth/register", a.Register)
	r.mux.HandleFunc("POST /api/v1/auth/login", a.Login)
	r.mux.HandleFunc("GET /api/v1/auth/logout", a.Logout)
	r.mux.HandleFunc("POST /api/v1/auth/forgotpassword", a.ForgotPassword)
	r.mux.HandleFunc("PUT /api/v1/auth/resetpassword/{resettoken}", a.ResetPassword)
	r.mux.Handle("GET /api/v1/auth/me", protect.ThenFunc(a.Me))
	r.mux.Handle("PUT /api/v1/auth/updatedetails", protect.ThenFunc(a.UpdateDetails))
	r.mux.Handle("PUT /api/v1/auth/updatepassword", protect.ThenFunc(a.UpdatePassword))

	// Users (admin)
	u := r.userHandler
	r.mux.Handle("GET /api/v1/users", admins.ThenFunc(u.ListUsers))
	r.mux.Handle("POST /api/v1/users", admins.ThenFunc(u.CreateUser))
	r.mux.Handle("GET /api/v1/users/{id}", admins.ThenFunc(u.GetUser))
	r.mux.Handle("PUT /api/v1/users/{id}", admins.ThenFunc(u.UpdateUser))
	r.mux.Handle("DELETE /api/v1/users/{id}", admins.ThenFunc(u.DeleteUser))

	if r.geolocationHandler != nil {
		r.mux.HandleFunc("GET /api/v1/geocode", r.geolocationHandler.Geocode)
		r.mux.HandleFunc("GET /api/v1/geocode/reverse", r.geolocationHandler.ReverseGeocode)
	}

	if r.uploadDir != "" {
		r.mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(r.uploadDir))))
	}

	// Outermost first. CORS wraps the cache so hits still carry CORS headers,
	// and compression sits outside the cache so stored bodies stay raw.
	chain := alice.New(
		middleware.Recover,
		middleware.ObservabilityMiddleware(r.metrics),
		middleware.LoggingMiddleware,
		middleware.SecureHeaders,
		middleware.CORS(r.allowedOrigins),
	)
	if r.rateLimiter != nil {
		chain = chain.Append(r.rateLimiter.Handler)
	}
	if r.maxBodyBytes > 0 {
		chain = chain.Append(middleware.LimitBody(r.maxBodyBytes))
	}
	chain = chain.Append(middleware.ResponseOptimization)
	if r.cacheMiddleware != nil {
		chain = chain.Append(r.cacheMiddleware.Middleware)
	}
	if r.loaders != nil {
		chain = chain.Append(r.loaders)
	}

	return chain.Then(middleware.RecordPattern(r.mux))
}
