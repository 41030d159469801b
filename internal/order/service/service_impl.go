package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/menuboard/internal/clock"
	"github.com/smallbiznis/menuboard/internal/config"
	"github.com/smallbiznis/menuboard/internal/live"
	menuitemdomain "github.com/smallbiznis/menuboard/internal/menuitem/domain"
	"github.com/smallbiznis/menuboard/internal/observability/metrics"
	"github.com/smallbiznis/menuboard/internal/order/domain"
	"github.com/smallbiznis/menuboard/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config   config.Config
	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	ItemRepo menuitemdomain.Repository
	Hub      *live.Hub
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	taxRate  float64
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	itemRepo menuitemdomain.Repository
	hub      *live.Hub
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		taxRate:  p.Config.TaxRate,
		db:       p.DB,
		log:      p.Log.Named("order.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		itemRepo: p.ItemRepo,
		hub:      p.Hub,
		metrics:  p.Metrics,
	}
}

// AddItem appends a line to the session's active order, creating the
// order when none exists. Find-or-create runs in one transaction so a
// session never ends up with two active orders. Identical items are not
// merged; each add appends a new line.
func (s *Service) AddItem(ctx context.Context, req domain.AddItemRequest) (*domain.Response, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return nil, domain.ErrInvalidSession
	}
	itemID, err := snowflake.ParseString(strings.TrimSpace(req.MenuItemID))
	if err != nil {
		return nil, domain.ErrInvalidItem
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}

	item, err := s.itemRepo.FindByID(ctx, s.db, itemID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil || !item.IsAvailable {
		return nil, domain.ErrInvalidItem
	}

	line := domain.Line{
		LineID:            s.genID.Generate().String(),
		MenuItemID:        snowflake.ID(item.ID).String(),
		Name:              item.Name,
		Quantity:          quantity,
		UnitPrice:         item.Price,
		SelectedModifiers: req.SelectedModifiers,
	}

	var order *domain.CustomerOrder
	err = s.db.Transaction(func(tx *gorm.DB) error {
		order, err = s.repo.FindActiveBySession(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if order == nil {
			order = &domain.CustomerOrder{
				ID:        s.genID.Generate().Int64(),
				SessionID: sessionID,
				Status:    domain.StatusActive,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := order.SetLines([]domain.Line{line}); err != nil {
				return err
			}
			order.Recompute(s.taxRate)
			return s.repo.Create(ctx, tx, order)
		}

		lines := append(order.Lines(), line)
		if err := order.SetLines(lines); err != nil {
			return err
		}
		order.Recompute(s.taxRate)
		order.UpdatedAt = now
		return s.repo.Update(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publish(live.ActionUpdated, order.ID)

	resp := toResponse(order)
	return &resp, nil
}

// UpdateQuantity sets the quantity of the addressed line; zero or less
// removes the line. Totals are rederived either way.
func (s *Service) UpdateQuantity(ctx context.Context, req domain.UpdateQuantityRequest) (*domain.Response, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return nil, domain.ErrInvalidSession
	}
	lineID := strings.TrimSpace(req.LineID)
	if lineID == "" {
		return nil, domain.ErrLineNotFound
	}

	var order *domain.CustomerOrder
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.repo.FindActiveBySession(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}

		lines := order.Lines()
		index := -1
		for i := range lines {
			if lines[i].LineID == lineID {
				index = i
				break
			}
		}
		if index < 0 {
			return domain.ErrLineNotFound
		}

		if req.Quantity <= 0 {
			lines = append(lines[:index], lines[index+1:]...)
		} else {
			lines[index].Quantity = req.Quantity
		}

		if err := order.SetLines(lines); err != nil {
			return err
		}
		order.Recompute(s.taxRate)
		order.UpdatedAt = s.clock.Now()
		return s.repo.Update(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publish(live.ActionUpdated, order.ID)

	resp := toResponse(order)
	return &resp, nil
}

func (s *Service) Active(ctx context.Context, sessionID string) (*domain.Response, error) {
	trimmed := strings.TrimSpace(sessionID)
	if trimmed == "" {
		return nil, domain.ErrInvalidSession
	}

	order, err := s.repo.FindActiveBySession(ctx, s.db, trimmed)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(order)
	return &resp, nil
}

// Clear empties the cart but keeps the order row, its id and its status.
func (s *Service) Clear(ctx context.Context, sessionID string) (*domain.Response, error) {
	trimmed := strings.TrimSpace(sessionID)
	if trimmed == "" {
		return nil, domain.ErrInvalidSession
	}

	order, err := s.repo.FindActiveBySession(ctx, s.db, trimmed)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}

	if err := order.SetLines(nil); err != nil {
		return nil, err
	}
	order.Recompute(s.taxRate)
	order.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, order); err != nil {
		return nil, err
	}

	s.publish(live.ActionUpdated, order.ID)

	resp := toResponse(order)
	return &resp, nil
}

func (s *Service) Submit(ctx context.Context, req domain.SubmitRequest) (*domain.Response, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return nil, domain.ErrInvalidSession
	}

	order, err := s.repo.FindActiveBySession(ctx, s.db, sessionID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if len(order.Lines()) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	order.Status = domain.StatusSubmitted
	if req.TableNumber != nil {
		order.TableNumber = normalizePointer(req.TableNumber)
	}
	if req.Notes != nil {
		order.Notes = normalizePointer(req.Notes)
	}
	order.Recompute(s.taxRate)
	order.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, order); err != nil {
		return nil, err
	}

	s.publish(live.ActionUpdated, order.ID)
	s.metrics.RecordOrderSubmitted()

	resp := toResponse(order)
	return &resp, nil
}

// Complete marks the order done. Calling it on an already completed
// order is a no-op.
func (s *Service) Complete(ctx context.Context, orderID string) (*domain.Response, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(orderID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	order, err := s.repo.FindByID(ctx, s.db, id.Int64())
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}

	if order.Status != domain.StatusCompleted {
		order.Status = domain.StatusCompleted
		order.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, s.db, order); err != nil {
			return nil, err
		}
		s.publish(live.ActionUpdated, order.ID)
	}

	resp := toResponse(order)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	trimmed := strings.TrimSpace(req.Status)
	if trimmed != "" {
		switch trimmed {
		case domain.StatusActive, domain.StatusSubmitted, domain.StatusCompleted:
		default:
			return nil, domain.ErrInvalidStatus
		}
	}

	limit := req.PageSize
	if limit <= 0 {
		limit = 25
	}
	if limit > 250 {
		limit = 250
	}

	var cursor *pagination.Cursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return nil, domain.ErrInvalidCursor
		}
		if _, err := time.Parse(time.RFC3339Nano, decoded.CreatedAt); err != nil {
			return nil, domain.ErrInvalidCursor
		}
		if _, err := strconv.ParseInt(decoded.ID, 10, 64); err != nil {
			return nil, domain.ErrInvalidCursor
		}
		cursor = decoded
	}

	// Over-fetch by one row to learn whether another page exists.
	orders, err := s.repo.List(ctx, s.db, trimmed, cursor, limit+1)
	if err != nil {
		return nil, err
	}

	refs := make([]*domain.CustomerOrder, 0, len(orders))
	for i := range orders {
		refs = append(refs, &orders[i])
	}
	pageInfo := pagination.BuildCursorPageInfo(refs, limit, func(order *domain.CustomerOrder) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        snowflake.ID(order.ID).String(),
			CreatedAt: order.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})

	if len(orders) > limit {
		orders = orders[:limit]
	}
	resp := make([]domain.Response, 0, len(orders))
	for i := range orders {
		resp = append(resp, toResponse(&orders[i]))
	}
	return &domain.ListResponse{Orders: resp, PageInfo: *pageInfo}, nil
}

func (s *Service) Delete(ctx context.Context, orderID string) error {
	id, err := snowflake.ParseString(strings.TrimSpace(orderID))
	if err != nil {
		return domain.ErrInvalidID
	}

	order, err := s.repo.FindByID(ctx, s.db, id.Int64())
	if err != nil {
		return err
	}
	if order == nil {
		return domain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, s.db, order.ID); err != nil {
		return err
	}

	s.publish(live.ActionDeleted, order.ID)
	return nil
}

func (s *Service) publish(action string, id int64) {
	s.hub.Publish(live.TopicOrders, live.Event{
		Entity:     live.TopicOrders,
		Action:     action,
		ID:         snowflake.ID(id).String(),
		OccurredAt: s.clock.Now().Format(time.RFC3339Nano),
	})
}

func toResponse(order *domain.CustomerOrder) domain.Response {
	lines := order.Lines()
	if lines == nil {
		lines = []domain.Line{}
	}
	return domain.Response{
		ID:          snowflake.ID(order.ID).String(),
		SessionID:   order.SessionID,
		Status:      order.Status,
		Items:       lines,
		Subtotal:    order.Subtotal,
		Tax:         order.Tax,
		Total:       order.Total,
		TableNumber: order.TableNumber,
		Notes:       order.Notes,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}

func normalizePointer(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
