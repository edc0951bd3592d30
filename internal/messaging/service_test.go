package messaging

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rmagbanua/kaon-backend/pkg/db/models"
	"github.com/rmagbanua/kaon-backend/pkg/enums"
	pkgerrors "github.com/rmagbanua/kaon-backend/pkg/errors"
)

type stubMessageRepo struct {
	orders   map[uuid.UUID]*models.Order
	messages []models.Message
}

func newStubMessageRepo() *stubMessageRepo {
	return &stubMessageRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (s *stubMessageRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubMessageRepo) Create(ctx context.Context, message *models.Message) error {
	message.ID = uuid.New()
	s.messages = append(s.messages, *message)
	return nil
}

func (s *stubMessageRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Message, error) {
	var out []models.Message
	for _, message := range s.messages {
		if message.OrderID == orderID {
			out = append(out, message)
		}
	}
	return out, nil
}

func (s *stubMessageRepo) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

type messagingFixture struct {
	repo *stubMessageRepo
	svc  Service
}

func newMessagingFixture(t *testing.T) *messagingFixture {
	t.Helper()
	repo := newStubMessageRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)
	return &messagingFixture{repo: repo, svc: svc}
}

func (f *messagingFixture) seedOrder() *models.Order {
	driverID := uuid.New()
	order := &models.Order{
		ID:       uuid.New(),
		Phone:    "09171234567",
		DriverID: &driverID,
		Items: []models.OrderItem{
			{ID: uuid.New(), ItemName: "adobo rice bowl", RestaurantSlug: "tita-nenas"},
		},
	}
	f.repo.orders[order.ID] = order
	return order
}

func customerIdentity(phone string) Identity {
	return Identity{Actor: enums.ActorCustomer, Phone: phone}
}

func TestAppendAndThreadKeepSendOrder(t *testing.T) {
	fixture := newMessagingFixture(t)
	order := fixture.seedOrder()
	ctx := context.Background()

	_, err := fixture.svc.Append(ctx, AppendInput{
		OrderID:    order.ID,
		Sender:     customerIdentity(order.Phone),
		SenderName: "Maria",
		Text:       "Please add extra rice",
	})
	require.NoError(t, err)

	_, err = fixture.svc.Append(ctx, AppendInput{
		OrderID:    order.ID,
		Sender:     Identity{Actor: enums.ActorRestaurant, RestaurantSlug: "tita-nenas"},
		SenderName: "Tita Nena's",
		Text:       "Noted, adding one cup",
	})
	require.NoError(t, err)

	thread, err := fixture.svc.Thread(ctx, order.ID, customerIdentity(order.Phone))
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "Please add extra rice", thread[0].Text)
	assert.Equal(t, enums.ActorRestaurant, thread[1].Sender)
}

func TestAppendValidatesText(t *testing.T) {
	fixture := newMessagingFixture(t)
	order := fixture.seedOrder()

	_, err := fixture.svc.Append(context.Background(), AppendInput{
		OrderID:    order.ID,
		Sender:     customerIdentity(order.Phone),
		SenderName: "Maria",
		Text:       "   ",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = fixture.svc.Append(context.Background(), AppendInput{
		OrderID:    order.ID,
		Sender:     customerIdentity(order.Phone),
		SenderName: "Maria",
		Text:       strings.Repeat("a", maxMessageLength+1),
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestThreadWrongPhoneDoesNotLeak(t *testing.T) {
	fixture := newMessagingFixture(t)
	order := fixture.seedOrder()

	_, err := fixture.svc.Thread(context.Background(), order.ID, customerIdentity("09990000000"))
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestAppendRejectsForeignDriver(t *testing.T) {
	fixture := newMessagingFixture(t)
	order := fixture.seedOrder()
	otherDriver := uuid.New()

	_, err := fixture.svc.Append(context.Background(), AppendInput{
		OrderID:    order.ID,
		Sender:     Identity{Actor: enums.ActorDriver, DriverID: &otherDriver},
		SenderName: "Jun",
		Text:       "On my way",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	_, err = fixture.svc.Append(context.Background(), AppendInput{
		OrderID:    order.ID,
		Sender:     Identity{Actor: enums.ActorDriver, DriverID: order.DriverID},
		SenderName: "Jun",
		Text:       "On my way",
	})
	require.NoError(t, err)
}

func TestAppendRejectsForeignRestaurant(t *testing.T) {
	fixture := newMessagingFixture(t)
	order := fixture.seedOrder()

	_, err := fixture.svc.Append(context.Background(), AppendInput{
		OrderID:    order.ID,
		Sender:     Identity{Actor: enums.ActorRestaurant, RestaurantSlug: "other-kitchen"},
		SenderName: "Other Kitchen",
		Text:       "wrong thread",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))
}

func TestStaffReadsAnyThread(t *testing.T) {
	fixture := newMessagingFixture(t)
	order := fixture.seedOrder()
	fixture.repo.messages = append(fixture.repo.messages, models.Message{
		ID:        uuid.New(),
		OrderID:   order.ID,
		Sender:    enums.ActorCustomer,
		Text:      "hello",
		CreatedAt: time.Now().UTC(),
	})

	thread, err := fixture.svc.Thread(context.Background(), order.ID, Identity{Actor: enums.ActorStaff})
	require.NoError(t, err)
	assert.Len(t, thread, 1)
}
