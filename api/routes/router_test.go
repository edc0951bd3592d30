package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	authsvc "github.com/rmagbanua/kaon-backend/internal/auth"
	"github.com/rmagbanua/kaon-backend/internal/dispatch"
	"github.com/rmagbanua/kaon-backend/internal/ledger"
	"github.com/rmagbanua/kaon-backend/internal/messaging"
	"github.com/rmagbanua/kaon-backend/internal/orders"
	"github.com/rmagbanua/kaon-backend/internal/restaurants"
	pkgauth "github.com/rmagbanua/kaon-backend/pkg/auth"
	"github.com/rmagbanua/kaon-backend/pkg/config"
	"github.com/rmagbanua/kaon-backend/pkg/db"
	"github.com/rmagbanua/kaon-backend/pkg/db/models"
	"github.com/rmagbanua/kaon-backend/pkg/enums"
	"github.com/rmagbanua/kaon-backend/pkg/logger"
	"github.com/rmagbanua/kaon-backend/pkg/pagination"
	"github.com/rmagbanua/kaon-backend/pkg/redis"
)

type stubAuthService struct{}

func (stubAuthService) DriverLogin(context.Context, string, string) (*authsvc.LoginResult, error) {
	panic("unimplemented")
}

func (stubAuthService) RestaurantLogin(context.Context, string, string) (*authsvc.LoginResult, error) {
	panic("unimplemented")
}

func (stubAuthService) StaffLogin(context.Context, string, string) (*authsvc.LoginResult, error) {
	panic("unimplemented")
}

type stubOrdersService struct{}

func (stubOrdersService) Create(context.Context, orders.CreateInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) Get(context.Context, uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) Track(context.Context, uuid.UUID, string) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) Head(context.Context, uuid.UUID, time.Time) (*orders.ChangeHead, error) {
	panic("unimplemented")
}

func (stubOrdersService) Accept(context.Context, orders.AcceptInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) Reject(context.Context, orders.RejectInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) Transition(context.Context, orders.TransitionInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) Cancel(context.Context, orders.CancelInput) error {
	panic("unimplemented")
}

func (stubOrdersService) Edit(context.Context, orders.EditInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) RecordPaymentRef(context.Context, uuid.UUID, string) error {
	panic("unimplemented")
}

func (stubOrdersService) ListForRestaurant(context.Context, string, []enums.OrderStatus, pagination.Params) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (stubOrdersService) ListBoard(context.Context, []enums.OrderStatus, pagination.Params) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (stubOrdersService) ListClaimable(context.Context, pagination.Params) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (stubOrdersService) ListForDriver(context.Context, uuid.UUID, []enums.OrderStatus, pagination.Params) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

type stubDispatchService struct{}

func (stubDispatchService) SetAvailability(context.Context, uuid.UUID, bool) (*models.Driver, error) {
	panic("unimplemented")
}

func (stubDispatchService) PushLocation(context.Context, dispatch.PushInput) (*dispatch.PushResult, error) {
	panic("unimplemented")
}

func (stubDispatchService) LiveLocation(context.Context, uuid.UUID) (*dispatch.LivePosition, error) {
	panic("unimplemented")
}

func (stubDispatchService) RecordArrival(context.Context, uuid.UUID, uuid.UUID, dispatch.ArrivalKind) (*models.Order, error) {
	panic("unimplemented")
}

func (stubDispatchService) SweepStaleDrivers(context.Context) (int, error) {
	panic("unimplemented")
}

type stubLedgerService struct{}

func (stubLedgerService) RecordCash(context.Context, ledger.RecordCashInput) (*models.CashRecord, error) {
	panic("unimplemented")
}

func (stubLedgerService) GetCash(context.Context, uuid.UUID) (*models.CashRecord, error) {
	panic("unimplemented")
}

func (stubLedgerService) AccrueDelivery(context.Context, *gorm.DB, *models.Order) error {
	panic("unimplemented")
}

func (stubLedgerService) ListEarnings(context.Context, uuid.UUID) ([]models.DriverEarning, error) {
	return nil, nil
}

func (stubLedgerService) MarkEarningsPaid(context.Context, uuid.UUID) (int64, error) {
	panic("unimplemented")
}

type stubMessagingService struct{}

func (stubMessagingService) Append(context.Context, messaging.AppendInput) (*models.Message, error) {
	panic("unimplemented")
}

func (stubMessagingService) Thread(context.Context, uuid.UUID, messaging.Identity) ([]models.Message, error) {
	panic("unimplemented")
}

type stubRestaurantsService struct{}

func (stubRestaurantsService) FindBySlug(context.Context, string) (*models.Restaurant, error) {
	panic("unimplemented")
}

func (stubRestaurantsService) Menu(context.Context, string, bool) ([]models.RestaurantItem, error) {
	return nil, nil
}

func (stubRestaurantsService) SetItemSoldOut(context.Context, string, uuid.UUID, bool) error {
	panic("unimplemented")
}

func (stubRestaurantsService) SetOpen(context.Context, string, bool) error {
	panic("unimplemented")
}

func (stubRestaurantsService) SetMinOrder(context.Context, string, int) error {
	panic("unimplemented")
}

func (stubRestaurantsService) OrderPayout(context.Context, string, uuid.UUID) (*restaurants.Payout, error) {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		(*db.Client)(nil),
		(*redis.Client)(nil),
		stubAuthService{},
		stubOrdersService{},
		stubDispatchService{},
		stubLedgerService{},
		stubMessagingService{},
		stubRestaurantsService{},
		nil, // stripe
		nil, // paymongo
		nil, // paypal
	)
}

func buildToken(t *testing.T, cfg *config.Config, class enums.ActorClass, slug *string) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now().UTC(), pkgauth.AccessTokenPayload{
		ActorID:        uuid.New(),
		ActorClass:     class,
		Name:           "Test Actor",
		RestaurantSlug: slug,
		JTI:            uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestDriverGroupRejectsMissingToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/driver/queue", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestDriverGroupRejectsWrongActorClass(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/driver/queue", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorStaff, nil))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff token got %d", resp.Code)
	}
}

func TestDriverGroupSucceedsWithDriverToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/driver/queue", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorDriver, nil))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for driver token got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRestaurantGroupCarriesSlugScope(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	slug := "tita-nenas"

	req := httptest.NewRequest(http.MethodGet, "/api/v1/restaurant/menu", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRestaurant, &slug))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for merchant token got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestStaffGroupRejectsDriverToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/staff/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorDriver, nil))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for driver token got %d", resp.Code)
	}
}

func TestStaffBoardSucceedsWithStaffToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/staff/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorStaff, nil))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for staff token got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestHealthLiveAlwaysOK(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
