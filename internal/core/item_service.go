package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateName is returned when an item name is already taken.
	ErrDuplicateName = errors.New("an item with this name already exists")
	// ErrConflict is returned when a conditional write loses to a concurrent
	// update (stale notified flags).
	ErrConflict = errors.New("item was modified concurrently, retry")
	// ErrInvalid wraps input validation failures.
	ErrInvalid = errors.New("invalid input")
)

// ItemService manages pantry items. Every write recomputes TotalStock from
// the cumulative entry/exit counters and applies the notification reset rule,
// so persisted rows always satisfy the eligibility engine's input invariants.
type ItemService interface {
	ListItems(ctx context.Context) ([]Item, error)
	GetItem(ctx context.Context, id int) (*Item, error)
	CreateItem(ctx context.Context, input ItemInput) (*Item, error)
	// UpdateItem applies a partial update. TotalStock is recomputed and the
	// notified flags are reset per ResetNotificationsIfResolved before the row
	// is written.
	UpdateItem(ctx context.Context, id int, upd ItemUpdate) (*Item, error)
	DeleteItem(ctx context.Context, id int) error
	// ApplyNotifiedPatch persists a MarkNotified patch. The write is
	// conditional on the current flag still being false for each dimension
	// the patch sets, so a concurrent reset is never overwritten; a lost race
	// returns ErrConflict.
	ApplyNotifiedPatch(ctx context.Context, id int, patch ItemPatch) (*Item, error)
}

type itemService struct {
	pool *pgxpool.Pool
}

// NewItemService constructs an ItemService backed by PostgreSQL.
func NewItemService(pool *pgxpool.Pool) ItemService {
	return &itemService{pool: pool}
}

const itemColumns = `id, name, unit, quantity_in, quantity_out, total_stock, stock_threshold,
	expiry_date, stock_notified, expiry_notified, last_notified_at, last_entry_at, last_exit_at,
	created_at, updated_at`

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	var qin, qout, threshold float64
	var total int
	err := row.Scan(&it.ID, &it.Name, &it.Unit, &qin, &qout, &total, &threshold,
		&it.ExpiryDate, &it.StockNotified, &it.ExpiryNotified,
		&it.LastNotifiedAt, &it.LastEntryAt, &it.LastExitAt,
		&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	it.QuantityIn = Quantity(qin)
	it.QuantityOut = Quantity(qout)
	it.TotalStock = Quantity(total)
	it.StockThreshold = Quantity(threshold)
	return &it, nil
}

func (s *itemService) ListItems(ctx context.Context) ([]Item, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+itemColumns+` FROM items ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}

func (s *itemService) GetItem(ctx context.Context, id int) (*Item, error) {
	it, err := scanItem(s.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch item %d: %w", id, err)
	}
	return it, nil
}

func (s *itemService) CreateItem(ctx context.Context, input ItemInput) (*Item, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: item name is required", ErrInvalid)
	}
	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		return nil, fmt.Errorf("%w: item unit is required", ErrInvalid)
	}
	if input.QuantityIn < 0 || input.QuantityOut < 0 {
		return nil, fmt.Errorf("%w: quantities cannot be negative", ErrInvalid)
	}
	if input.StockThreshold < 0 {
		return nil, fmt.Errorf("%w: stock threshold cannot be negative", ErrInvalid)
	}

	var exists bool
	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM items WHERE name = $1)", name,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check item name: %w", err)
	}
	if exists {
		return nil, ErrDuplicateName
	}

	total := ComputeTotalStock(input.QuantityIn, input.QuantityOut)
	now := time.Now()
	var entryAt, exitAt *time.Time
	if input.QuantityIn > 0 {
		entryAt = &now
	}
	if input.QuantityOut > 0 {
		exitAt = &now
	}

	// Both notified flags always start false for a new item.
	it, err := scanItem(s.pool.QueryRow(ctx, `
		INSERT INTO items (name, unit, quantity_in, quantity_out, total_stock, stock_threshold,
			expiry_date, stock_notified, expiry_notified, last_entry_at, last_exit_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false, false, $8, $9)
		RETURNING `+itemColumns,
		name, unit, float64(input.QuantityIn), float64(input.QuantityOut), total,
		float64(input.StockThreshold), input.ExpiryDate, entryAt, exitAt))
	if err != nil {
		return nil, fmt.Errorf("failed to insert item: %w", err)
	}
	return it, nil
}

func (s *itemService) UpdateItem(ctx context.Context, id int, upd ItemUpdate) (*Item, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	prev, err := scanItem(tx.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock item %d: %w", id, err)
	}

	next := *prev
	now := time.Now()

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: item name is required", ErrInvalid)
		}
		if name != prev.Name {
			var exists bool
			if err := tx.QueryRow(ctx,
				"SELECT EXISTS (SELECT 1 FROM items WHERE name = $1 AND id <> $2)", name, id,
			).Scan(&exists); err != nil {
				return nil, fmt.Errorf("failed to check item name: %w", err)
			}
			if exists {
				return nil, ErrDuplicateName
			}
		}
		next.Name = name
	}
	if upd.Unit != nil {
		unit := strings.TrimSpace(*upd.Unit)
		if unit == "" {
			return nil, fmt.Errorf("%w: item unit is required", ErrInvalid)
		}
		next.Unit = unit
	}
	if upd.QuantityIn != nil {
		if *upd.QuantityIn < 0 {
			return nil, fmt.Errorf("%w: quantities cannot be negative", ErrInvalid)
		}
		next.QuantityIn = *upd.QuantityIn
		next.LastEntryAt = &now
	}
	if upd.QuantityOut != nil {
		if *upd.QuantityOut < 0 {
			return nil, fmt.Errorf("%w: quantities cannot be negative", ErrInvalid)
		}
		next.QuantityOut = *upd.QuantityOut
		next.LastExitAt = &now
	}
	if upd.StockThreshold != nil {
		if *upd.StockThreshold < 0 {
			return nil, fmt.Errorf("%w: stock threshold cannot be negative", ErrInvalid)
		}
		next.StockThreshold = *upd.StockThreshold
	}
	if upd.ClearExpiry {
		next.ExpiryDate = nil
	} else if upd.ExpiryDate != nil {
		next.ExpiryDate = upd.ExpiryDate
	}

	total := ComputeTotalStock(next.QuantityIn, next.QuantityOut)
	stockNotified, expiryNotified := ResetNotificationsIfResolved(*prev, upd, now)

	it, err := scanItem(tx.QueryRow(ctx, `
		UPDATE items
		SET name = $1, unit = $2, quantity_in = $3, quantity_out = $4, total_stock = $5,
		    stock_threshold = $6, expiry_date = $7, stock_notified = $8, expiry_notified = $9,
		    last_entry_at = $10, last_exit_at = $11, updated_at = NOW()
		WHERE id = $12
		RETURNING `+itemColumns,
		next.Name, next.Unit, float64(next.QuantityIn), float64(next.QuantityOut), total,
		float64(next.StockThreshold), next.ExpiryDate, stockNotified, expiryNotified,
		next.LastEntryAt, next.LastExitAt, id))
	if err != nil {
		return nil, fmt.Errorf("failed to update item %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit item update: %w", err)
	}
	return it, nil
}

func (s *itemService) DeleteItem(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM items WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete item %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return nil
}

// ApplyNotifiedPatch sets the notified flags a dispatch confirmed. The WHERE
// clause re-checks each flag is still false, so the patch loses cleanly to a
// concurrent reset-and-retrigger instead of clobbering it.
func (s *itemService) ApplyNotifiedPatch(ctx context.Context, id int, patch ItemPatch) (*Item, error) {
	set := []string{"updated_at = NOW()"}
	cond := []string{}
	args := []any{id}
	n := 1

	if patch.StockNotified != nil {
		n++
		set = append(set, fmt.Sprintf("stock_notified = $%d", n))
		args = append(args, *patch.StockNotified)
		if *patch.StockNotified {
			cond = append(cond, "stock_notified = false")
		}
	}
	if patch.ExpiryNotified != nil {
		n++
		set = append(set, fmt.Sprintf("expiry_notified = $%d", n))
		args = append(args, *patch.ExpiryNotified)
		if *patch.ExpiryNotified {
			cond = append(cond, "expiry_notified = false")
		}
	}
	if patch.LastNotifiedAt != nil {
		n++
		set = append(set, fmt.Sprintf("last_notified_at = $%d", n))
		args = append(args, *patch.LastNotifiedAt)
	}

	query := "UPDATE items SET " + strings.Join(set, ", ") + " WHERE id = $1"
	if len(cond) > 0 {
		query += " AND " + strings.Join(cond, " AND ")
	}
	query += " RETURNING " + itemColumns

	it, err := scanItem(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the item is gone or a concurrent update already touched
			// the flags; distinguish so callers can report accurately.
			var exists bool
			if checkErr := s.pool.QueryRow(ctx,
				"SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)", id,
			).Scan(&exists); checkErr == nil && !exists {
				return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
			}
			return nil, fmt.Errorf("item %d: %w", id, ErrConflict)
		}
		return nil, fmt.Errorf("failed to apply notified patch to item %d: %w", id, err)
	}
	return it, nil
}
