package core

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Quantity is a numeric field that tolerates the loose inputs the historical
// data set contains: JSON numbers, numbers quoted as strings, null, and
// garbage all decode without error. Anything non-numeric coerces to 0.
type Quantity float64

func (q *Quantity) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*q = 0
		return nil
	}
	s = strings.TrimSpace(strings.Trim(s, `"`))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*q = 0
		return nil
	}
	*q = Quantity(f)
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(q))
}

// Decimal converts the quantity to a decimal for exact arithmetic.
func (q Quantity) Decimal() decimal.Decimal {
	return decimal.NewFromFloat(float64(q))
}

// Item is a tracked pantry item. TotalStock is always floor(QuantityIn -
// QuantityOut); ItemService recomputes it on every write and everything else
// treats it as authoritative input.
type Item struct {
	ID             int        `json:"id"`
	Name           string     `json:"name"`
	Unit           string     `json:"unit"`
	QuantityIn     Quantity   `json:"quantity_in"`
	QuantityOut    Quantity   `json:"quantity_out"`
	TotalStock     Quantity   `json:"total_stock"`
	StockThreshold Quantity   `json:"stock_threshold"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
	StockNotified  bool       `json:"stock_notified"`
	ExpiryNotified bool       `json:"expiry_notified"`
	LastNotifiedAt *time.Time `json:"last_notified_at,omitempty"`
	LastEntryAt    *time.Time `json:"last_entry_at,omitempty"`
	LastExitAt     *time.Time `json:"last_exit_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ItemInput is the payload for creating an item.
type ItemInput struct {
	Name           string     `json:"name"`
	Unit           string     `json:"unit"`
	QuantityIn     Quantity   `json:"quantity_in"`
	QuantityOut    Quantity   `json:"quantity_out"`
	StockThreshold Quantity   `json:"stock_threshold"`
	ExpiryDate     *time.Time `json:"expiry_date"`
}

// ItemUpdate is a partial update. Nil pointers leave the field untouched.
// ClearExpiry removes the expiry date (distinct from "field not sent").
type ItemUpdate struct {
	Name           *string    `json:"name"`
	Unit           *string    `json:"unit"`
	QuantityIn     *Quantity  `json:"quantity_in"`
	QuantityOut    *Quantity  `json:"quantity_out"`
	StockThreshold *Quantity  `json:"stock_threshold"`
	ExpiryDate     *time.Time `json:"expiry_date"`
	ClearExpiry    bool       `json:"clear_expiry"`
}

// ComputeTotalStock derives the authoritative stock counter from the
// cumulative entry/exit quantities: floor(in - out), computed in decimal so
// float artifacts never shift the floor.
func ComputeTotalStock(in, out Quantity) int {
	return int(in.Decimal().Sub(out.Decimal()).Floor().IntPart())
}
