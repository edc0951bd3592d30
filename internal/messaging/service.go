package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmagbanua/kaon-backend/pkg/db/models"
	"github.com/rmagbanua/kaon-backend/pkg/enums"
	pkgerrors "github.com/rmagbanua/kaon-backend/pkg/errors"
)

const maxMessageLength = 2000

// Identity names who is reading or writing a thread. The gate fields are
// checked per actor class: customers prove the order phone, drivers must be
// the assigned driver, restaurants must own at least one line on the order.
type Identity struct {
	Actor          enums.ActorClass
	Phone          string
	DriverID       *uuid.UUID
	RestaurantSlug string
}

// AppendInput adds one message to an order thread.
type AppendInput struct {
	OrderID    uuid.UUID
	Sender     Identity
	SenderName string
	Text       string
}

// Service keeps per-order message threads. Threads are append-only.
type Service interface {
	Append(ctx context.Context, input AppendInput) (*models.Message, error)
	Thread(ctx context.Context, orderID uuid.UUID, reader Identity) ([]models.Message, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires messaging dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("messaging repository required")
	}
	return &service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Append(ctx context.Context, input AppendInput) (*models.Message, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message text required")
	}
	if len(text) > maxMessageLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message text too long")
	}
	if strings.TrimSpace(input.SenderName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sender name required")
	}

	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if err := authorize(order, input.Sender); err != nil {
		return nil, err
	}

	message := &models.Message{
		OrderID:    order.ID,
		Sender:     input.Sender.Actor,
		SenderName: strings.TrimSpace(input.SenderName),
		Text:       text,
		CreatedAt:  s.now(),
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append message")
	}
	return message, nil
}

func (s *service) Thread(ctx context.Context, orderID uuid.UUID, reader Identity) ([]models.Message, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := authorize(order, reader); err != nil {
		return nil, err
	}

	messages, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}
	return messages, nil
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// authorize checks the identity's claim on the order. A customer presenting
// the wrong phone gets the same not-found answer as a missing order.
func authorize(order *models.Order, id Identity) error {
	switch id.Actor {
	case enums.ActorCustomer:
		if strings.TrimSpace(id.Phone) == "" || id.Phone != order.Phone {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
	case enums.ActorDriver:
		if id.DriverID == nil || order.DriverID == nil || *id.DriverID != *order.DriverID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "driver is not assigned to this order")
		}
	case enums.ActorRestaurant:
		slug := strings.TrimSpace(id.RestaurantSlug)
		if slug == "" {
			return pkgerrors.New(pkgerrors.CodeForbidden, "restaurant identity missing")
		}
		for _, item := range order.Items {
			if item.RestaurantSlug == slug {
				return nil
			}
		}
		return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to this restaurant")
	case enums.ActorStaff:
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor")
	}
	return nil
}
