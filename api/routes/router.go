package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/givehub/givehub-backend/api/controllers"
	boutiquecontrollers "github.com/givehub/givehub-backend/api/controllers/boutique"
	campaigncontrollers "github.com/givehub/givehub-backend/api/controllers/campaigns"
	donationcontrollers "github.com/givehub/givehub-backend/api/controllers/donations"
	webhookcontrollers "github.com/givehub/givehub-backend/api/controllers/webhooks"
	"github.com/givehub/givehub-backend/api/middleware"
	"github.com/givehub/givehub-backend/internal/auth"
	"github.com/givehub/givehub-backend/internal/boutique"
	"github.com/givehub/givehub-backend/internal/campaigns"
	"github.com/givehub/givehub-backend/internal/donations"
	"github.com/givehub/givehub-backend/pkg/auth/session"
	"github.com/givehub/givehub-backend/pkg/config"
	"github.com/givehub/givehub-backend/pkg/enums"
	"github.com/givehub/givehub-backend/pkg/logger"
	"github.com/givehub/givehub-backend/pkg/redis"
)

// Services bundles the domain services the router exposes.
type Services struct {
	Auth      auth.Service
	Register  auth.RegisterService
	Campaigns campaigns.Service
	Donations donations.Service
	Boutique  boutique.Service
}

// NewRouter assembles the HTTP surface. Routes are registered with full
// paths inside groups so middleware sees the final route pattern.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	gatherer prometheus.Gatherer,
	readiness map[string]controllers.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSAllowedOrigins),
	)

	// A typed nil client must not reach the middleware as a non-nil interface.
	var (
		idempotencyStore middleware.IdempotencyStore
		rateLimitStore   middleware.RateLimitStore
	)
	if redisClient != nil {
		idempotencyStore = redisClient
		rateLimitStore = redisClient
	}
	idempotent := middleware.Idempotency(idempotencyStore, logg)

	limits := cfg.RateLimit
	loginLimit := middleware.RateLimit(
		middleware.NewRateLimitPolicy("login", "email", limits.LoginWindow, limits.LoginIPLimit, limits.LoginEmailLimit),
		rateLimitStore, logg,
	)
	registerLimit := middleware.RateLimit(
		middleware.NewRateLimitPolicy("register", "email", limits.RegisterWindow, limits.RegisterIPLimit, limits.RegisterEmailLimit),
		rateLimitStore, logg,
	)
	pledgeLimit := middleware.RateLimit(
		middleware.NewRateLimitPolicy("donation", "donor_email", limits.DonationWindow, limits.DonationIPLimit, limits.DonationEmailLimit),
		rateLimitStore, logg,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.With(loginLimit).
			Post("/api/v1/auth/login", controllers.AuthLogin(svc.Auth, logg))
		r.With(registerLimit, idempotent).
			Post("/api/v1/auth/register", controllers.AuthRegister(svc.Register, svc.Auth, logg))
		r.Post("/api/v1/auth/refresh", controllers.AuthRefresh(svc.Auth, logg))
		r.Post("/api/v1/auth/logout", controllers.AuthLogout(svc.Auth, logg))

		r.Post("/api/v1/webhooks/payments/{operator}", webhookcontrollers.PaymentCallback(cfg.Webhook, svc.Donations, logg))
	})

	// Public reads and anonymous pledges.
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, sessions, logg))
		r.Get("/api/v1/campaigns", campaigncontrollers.List(svc.Campaigns, logg))
		r.Get("/api/v1/campaigns/{campaignId}", campaigncontrollers.Detail(svc.Campaigns, logg))
		r.With(pledgeLimit, idempotent).Post("/api/v1/campaigns/{campaignId}/donations", donationcontrollers.Initiate(svc.Donations, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(idempotent)

		r.Post("/api/v1/campaigns", campaigncontrollers.Create(svc.Campaigns, logg))
		r.Patch("/api/v1/campaigns/{campaignId}", campaigncontrollers.Update(svc.Campaigns, logg))

		r.Get("/api/v1/me/campaigns", campaigncontrollers.Mine(svc.Campaigns, logg))
		r.Get("/api/v1/me/donations", donationcontrollers.Mine(svc.Donations, logg))
		r.Get("/api/v1/me/orders", boutiquecontrollers.MyOrders(svc.Boutique, logg))

		r.Post("/api/v1/material-donations", boutiquecontrollers.SubmitMaterialDonation(svc.Boutique, logg))
		r.Get("/api/v1/boutique/items", boutiquecontrollers.ListItems(svc.Boutique, logg))
		r.Get("/api/v1/boutique/items/{itemId}", boutiquecontrollers.ItemDetail(svc.Boutique, logg))
		r.Post("/api/v1/boutique/items/{itemId}/orders", boutiquecontrollers.RequestItem(svc.Boutique, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))
		r.Use(idempotent)

		r.Get("/api/admin/v1/campaigns", campaigncontrollers.AdminList(svc.Campaigns, logg))
		r.Post("/api/admin/v1/campaigns/reconcile", donationcontrollers.Reconcile(svc.Donations, logg))
		r.Post("/api/admin/v1/campaigns/{campaignId}/moderate", campaigncontrollers.Moderate(svc.Campaigns, logg))
		r.Get("/api/admin/v1/campaigns/{campaignId}/donations", donationcontrollers.AdminCampaignDonations(svc.Donations, logg))
		r.Get("/api/admin/v1/donations/{donationId}", donationcontrollers.AdminDetail(svc.Donations, logg))

		r.Get("/api/admin/v1/material-donations", boutiquecontrollers.AdminMaterialDonations(svc.Boutique, logg))
		r.Post("/api/admin/v1/material-donations/{donationId}/publish", boutiquecontrollers.Publish(svc.Boutique, logg))
		r.Post("/api/admin/v1/material-donations/{donationId}/reject", boutiquecontrollers.RejectMaterialDonation(svc.Boutique, logg))
		r.Post("/api/admin/v1/boutique/items/{itemId}/withdraw", boutiquecontrollers.WithdrawItem(svc.Boutique, logg))
		r.Get("/api/admin/v1/boutique/orders", boutiquecontrollers.AdminOrders(svc.Boutique, logg))
		r.Post("/api/admin/v1/boutique/orders/{orderId}/decision", boutiquecontrollers.Decide(svc.Boutique, logg))
	})

	return r
}
