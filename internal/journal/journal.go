package journal

import (
	"time"

	"gorm.io/gorm"

	"main/internal/adapter"
	"main/internal/adapter/enum"
	"main/internal/orders"
	"main/pkg/conn"
)

// OrderRecord is one submitted order row.
type OrderRecord struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	OrderID   uint64 `gorm:"index"`
	Account   string `gorm:"size:16"`
	Code      string `gorm:"index;size:12"`
	Side      string `gorm:"size:8"`
	Quantity  int64
	Price     int64
	Amount    int64
	Status    string `gorm:"size:16"`
}

// FillRecord is one fill/confirmation notice row.
type FillRecord struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	Code      string `gorm:"index;size:12"`
	Kind      string `gorm:"size:16"`
	Quantity  int64
}

// Journal persists the order/fill history to postgres. Every method is
// nil-safe so the engine runs identically without a database configured.
type Journal struct {
	db *gorm.DB
}

// New migrates the journal tables and returns a journal bound to the client.
func New(client *conn.Client) (*Journal, error) {
	db := client.DB()
	if err := db.AutoMigrate(&OrderRecord{}, &FillRecord{}); err != nil {
		return nil, err
	}
	return &Journal{db: db}, nil
}

// RecordOrder appends a submitted order and its outcome.
func (j *Journal) RecordOrder(account string, o *orders.Order) error {
	if j == nil || j.db == nil || o == nil {
		return nil
	}
	return j.db.Create(&OrderRecord{
		OrderID:  o.ID,
		Account:  account,
		Code:     string(o.Code),
		Side:     o.Side.String(),
		Quantity: int64(o.Quantity),
		Price:    int64(o.Price),
		Amount:   int64(o.Amount),
		Status:   statusLabel(o.State),
	}).Error
}

// RecordFill appends one fill notice.
func (j *Journal) RecordFill(code adapter.Code, kind enum.FillKind, quantity adapter.Quantity) error {
	if j == nil || j.db == nil {
		return nil
	}
	label := "confirmation"
	if kind.ChangesBalance() {
		label = "execution"
	}
	return j.db.Create(&FillRecord{
		Code:     string(code),
		Kind:     label,
		Quantity: int64(quantity),
	}).Error
}

func statusLabel(state orders.State) string {
	switch state {
	case orders.StateSent:
		return "sent"
	case orders.StateAcked:
		return "acked"
	case orders.StateFilled:
		return "filled"
	case orders.StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}
