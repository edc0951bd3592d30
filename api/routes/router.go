package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rmagbanua/kaon-backend/api/controllers"
	"github.com/rmagbanua/kaon-backend/api/middleware"
	authsvc "github.com/rmagbanua/kaon-backend/internal/auth"
	"github.com/rmagbanua/kaon-backend/internal/dispatch"
	"github.com/rmagbanua/kaon-backend/internal/ledger"
	"github.com/rmagbanua/kaon-backend/internal/messaging"
	"github.com/rmagbanua/kaon-backend/internal/orders"
	"github.com/rmagbanua/kaon-backend/internal/restaurants"
	"github.com/rmagbanua/kaon-backend/pkg/config"
	"github.com/rmagbanua/kaon-backend/pkg/db"
	"github.com/rmagbanua/kaon-backend/pkg/enums"
	"github.com/rmagbanua/kaon-backend/pkg/logger"
	"github.com/rmagbanua/kaon-backend/pkg/payments"
	"github.com/rmagbanua/kaon-backend/pkg/redis"
)

// NewRouter wires every portal onto one chi mux. The customer portal is
// phone-gated and rate-limited instead of tokened; driver, restaurant and
// staff portals sit behind bearer auth scoped to their actor class.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	authService authsvc.Service,
	ordersService orders.Service,
	dispatchService dispatch.Service,
	ledgerService ledger.Service,
	messagingService messaging.Service,
	restaurantsService restaurants.Service,
	stripeClient *payments.StripeClient,
	paymongoClient *payments.PayMongoClient,
	paypalClient *payments.PayPalClient,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbClient, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/driver/login", controllers.DriverLogin(authService, logg))
		r.Post("/restaurant/login", controllers.RestaurantLogin(authService, logg))
		r.Post("/staff/login", controllers.StaffLogin(authService, logg))
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Post("/", controllers.CustomerCreateOrder(ordersService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.TrackRateLimit(cfg.TrackLimit, redisClient, logg))
			r.Get("/{orderId}", controllers.CustomerTrackOrder(ordersService, logg))
			r.Get("/{orderId}/head", controllers.CustomerOrderHead(ordersService, logg))
			r.Get("/{orderId}/location", controllers.CustomerLiveLocation(ordersService, dispatchService, logg))
			r.Get("/{orderId}/messages", controllers.CustomerThread(messagingService, logg))
		})

		r.Post("/{orderId}/cancel", controllers.CustomerCancelOrder(ordersService, logg))
		r.Patch("/{orderId}", controllers.CustomerEditOrder(ordersService, logg))
		r.Post("/{orderId}/messages", controllers.CustomerSendMessage(messagingService, logg))
		r.Post("/{orderId}/payment-session", controllers.CustomerPaymentSession(ordersService, stripeClient, paymongoClient, paypalClient, logg))
		r.Post("/{orderId}/crypto-confirmation", controllers.CustomerConfirmCrypto(ordersService, logg))
	})

	r.Route("/api/v1/driver", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireActor(logg, enums.ActorDriver))

		r.Put("/availability", controllers.DriverSetAvailability(dispatchService, logg))
		r.Get("/queue", controllers.DriverQueue(ordersService, logg))
		r.Get("/earnings", controllers.DriverEarnings(ledgerService, logg))
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.DriverOrders(ordersService, logg))
			r.Post("/{orderId}/claim", controllers.DriverClaim(ordersService, logg))
			r.Post("/{orderId}/pickup", controllers.DriverPickup(ordersService, logg))
			r.Post("/{orderId}/out-for-delivery", controllers.DriverOutForDelivery(ordersService, logg))
			r.Post("/{orderId}/deliver", controllers.DriverDeliver(ordersService, logg))
			r.Post("/{orderId}/arrival", controllers.DriverArrival(dispatchService, logg))
			r.Post("/{orderId}/location", controllers.DriverPushLocation(dispatchService, logg))
			r.Post("/{orderId}/cash", controllers.DriverCashEntry(ledgerService, logg))
			r.Get("/{orderId}/messages", controllers.DriverThread(messagingService, logg))
			r.Post("/{orderId}/messages", controllers.DriverSendMessage(messagingService, logg))
		})
	})

	r.Route("/api/v1/restaurant", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireActor(logg, enums.ActorRestaurant))

		r.Get("/menu", controllers.RestaurantMenu(restaurantsService, logg))
		r.Put("/menu/{itemId}/sold-out", controllers.RestaurantSetSoldOut(restaurantsService, logg))
		r.Put("/open", controllers.RestaurantSetOpen(restaurantsService, logg))
		r.Put("/min-order", controllers.RestaurantSetMinOrder(restaurantsService, logg))
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.RestaurantIncoming(ordersService, logg))
			r.Post("/{orderId}/accept", controllers.RestaurantAccept(ordersService, logg))
			r.Post("/{orderId}/reject", controllers.RestaurantReject(ordersService, logg))
			r.Post("/{orderId}/preparing", controllers.RestaurantStartPreparing(ordersService, logg))
			r.Post("/{orderId}/ready", controllers.RestaurantMarkReady(ordersService, logg))
			r.Get("/{orderId}/payout", controllers.RestaurantOrderPayout(restaurantsService, logg))
			r.Get("/{orderId}/messages", controllers.RestaurantThread(messagingService, logg))
			r.Post("/{orderId}/messages", controllers.RestaurantSendMessage(messagingService, logg))
		})
	})

	r.Route("/api/v1/staff", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireActor(logg, enums.ActorStaff))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.StaffBoard(ordersService, logg))
			r.Get("/{orderId}", controllers.StaffGetOrder(ordersService, logg))
			r.Post("/{orderId}/status", controllers.StaffOverride(ordersService, logg))
			r.Post("/{orderId}/assign", controllers.StaffAssignDriver(ordersService, logg))
			r.Post("/{orderId}/cancel", controllers.StaffCancel(ordersService, logg))
			r.Get("/{orderId}/cash", controllers.StaffCashRecord(ledgerService, logg))
			r.Get("/{orderId}/messages", controllers.StaffThread(messagingService, logg))
			r.Post("/{orderId}/messages", controllers.StaffSendMessage(messagingService, logg))
		})
		r.Post("/drivers/{driverId}/earnings/settle", controllers.StaffMarkEarningsPaid(ledgerService, logg))
	})

	return r
}
