package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/menuboard/internal/order/domain"
	"github.com/smallbiznis/menuboard/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const orderColumns = `id, session_id, status, items, subtotal, tax, total, table_number, notes, created_at, updated_at`

func (r *repo) Create(ctx context.Context, db *gorm.DB, order *domain.CustomerOrder) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO customer_orders (id, session_id, status, items, subtotal, tax, total, table_number, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.SessionID,
		order.Status,
		order.Items,
		order.Subtotal,
		order.Tax,
		order.Total,
		order.TableNumber,
		order.Notes,
		order.CreatedAt,
		order.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.CustomerOrder, error) {
	var order domain.CustomerOrder
	err := db.WithContext(ctx).Raw(
		`SELECT `+orderColumns+` FROM customer_orders WHERE id = ?`,
		id,
	).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) FindActiveBySession(ctx context.Context, db *gorm.DB, sessionID string) (*domain.CustomerOrder, error) {
	var order domain.CustomerOrder
	err := db.WithContext(ctx).Raw(
		`SELECT `+orderColumns+` FROM customer_orders
		 WHERE session_id = ? AND status = ?
		 ORDER BY created_at DESC LIMIT 1`,
		sessionID,
		domain.StatusActive,
	).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, status string, cursor *pagination.Cursor, limit int) ([]domain.CustomerOrder, error) {
	var orders []domain.CustomerOrder
	query := `SELECT ` + orderColumns + ` FROM customer_orders`
	args := []any{}
	where := []string{}
	if strings.TrimSpace(status) != "" {
		where = append(where, `status = ?`)
		args = append(args, status)
	}
	if cursor != nil {
		createdAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return nil, err
		}
		id, err := strconv.ParseInt(cursor.ID, 10, 64)
		if err != nil {
			return nil, err
		}
		where = append(where, `(created_at < ? OR (created_at = ? AND id < ?))`)
		args = append(args, createdAt, createdAt, id)
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	err := db.WithContext(ctx).Raw(query, args...).Scan(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, order *domain.CustomerOrder) error {
	if order == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE customer_orders
		 SET status = ?, items = ?, subtotal = ?, tax = ?, total = ?, table_number = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		order.Status,
		order.Items,
		order.Subtotal,
		order.Tax,
		order.Total,
		order.TableNumber,
		order.Notes,
		order.UpdatedAt,
		order.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Exec(`DELETE FROM customer_orders WHERE id = ?`, id).Error
}
