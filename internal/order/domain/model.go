package domain

import (
	"encoding/json"
	"math"
	"time"

	"gorm.io/datatypes"
)

const (
	StatusActive    = "active"
	StatusSubmitted = "submitted"
	StatusCompleted = "completed"
)

// Line is one cart entry. LineID is generated at append time and is the
// only way callers address a line; positional indexes are not part of the
// contract.
type Line struct {
	LineID            string     `json:"line_id"`
	MenuItemID        string     `json:"menu_item_id"`
	Name              string     `json:"name"`
	Quantity          int        `json:"quantity"`
	UnitPrice         int64      `json:"unit_price"`
	SelectedModifiers []Modifier `json:"selected_modifiers,omitempty"`
}

type Modifier struct {
	Name       string `json:"name"`
	PriceDelta int64  `json:"price_delta"`
}

type CustomerOrder struct {
	ID          int64          `json:"id" gorm:"primaryKey"`
	SessionID   string         `json:"session_id" gorm:"type:text;not null;index:ix_customer_orders_session"`
	Status      string         `json:"status" gorm:"type:text;not null;default:active;index:ix_customer_orders_status"`
	Items       datatypes.JSON `json:"items"`
	Subtotal    int64          `json:"subtotal" gorm:"not null;default:0"`
	Tax         int64          `json:"tax" gorm:"not null;default:0"`
	Total       int64          `json:"total" gorm:"not null;default:0"`
	TableNumber *string        `json:"table_number,omitempty" gorm:"type:text"`
	Notes       *string        `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"not null"`
}

func (CustomerOrder) TableName() string { return "customer_orders" }

func (o *CustomerOrder) Lines() []Line {
	if len(o.Items) == 0 {
		return nil
	}
	var lines []Line
	if err := json.Unmarshal(o.Items, &lines); err != nil {
		return nil
	}
	return lines
}

func (o *CustomerOrder) SetLines(lines []Line) error {
	if lines == nil {
		lines = []Line{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	o.Items = datatypes.JSON(raw)
	return nil
}

// Recompute derives subtotal, tax and total from the line list. The three
// fields are never set independently of this formula. Modifier deltas
// count into the line unit price.
func (o *CustomerOrder) Recompute(taxRate float64) {
	var subtotal int64
	for _, line := range o.Lines() {
		price := line.UnitPrice
		for _, m := range line.SelectedModifiers {
			price += m.PriceDelta
		}
		subtotal += price * int64(line.Quantity)
	}
	o.Subtotal = subtotal
	o.Tax = int64(math.Round(float64(subtotal) * taxRate))
	o.Total = o.Subtotal + o.Tax
}
