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

// ErrDuplicatePhone is returned when a phone number is already registered.
var ErrDuplicatePhone = errors.New("this phone number is already registered")

// RecipientService manages the people alerts are delivered to.
type RecipientService interface {
	ListRecipients(ctx context.Context) ([]NotificationRecipient, error)
	GetRecipient(ctx context.Context, id int) (*NotificationRecipient, error)
	CreateRecipient(ctx context.Context, input RecipientInput) (*NotificationRecipient, error)
	UpdateRecipient(ctx context.Context, id int, input RecipientInput) (*NotificationRecipient, error)
	// DeleteRecipient soft-deletes: the row stays, IsActive flips to false.
	DeleteRecipient(ctx context.Context, id int) error
	// GetStatus summarizes active recipients and the most recently notified.
	GetStatus(ctx context.Context) (*RecipientStatus, error)
	// TouchLastNotification stamps the given recipients after a confirmed
	// dispatch.
	TouchLastNotification(ctx context.Context, ids []int, at time.Time) error
}

type recipientService struct {
	pool *pgxpool.Pool
}

// NewRecipientService constructs a RecipientService backed by PostgreSQL.
func NewRecipientService(pool *pgxpool.Pool) RecipientService {
	return &recipientService{pool: pool}
}

const recipientColumns = `id, full_name, phone, is_active, created_at, last_notification`

func scanRecipient(row pgx.Row) (*NotificationRecipient, error) {
	var r NotificationRecipient
	err := row.Scan(&r.ID, &r.FullName, &r.Phone, &r.IsActive, &r.CreatedAt, &r.LastNotification)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *recipientService) ListRecipients(ctx context.Context) ([]NotificationRecipient, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+recipientColumns+`
		FROM notification_recipients
		WHERE is_active = true
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipients: %w", err)
	}
	defer rows.Close()

	var recipients []NotificationRecipient
	for rows.Next() {
		r, err := scanRecipient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipient: %w", err)
		}
		recipients = append(recipients, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipients: %w", err)
	}
	return recipients, nil
}

func (s *recipientService) GetRecipient(ctx context.Context, id int) (*NotificationRecipient, error) {
	r, err := scanRecipient(s.pool.QueryRow(ctx,
		`SELECT `+recipientColumns+` FROM notification_recipients WHERE id = $1 AND is_active = true`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("recipient %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch recipient %d: %w", id, err)
	}
	return r, nil
}

func validateFullName(fullName string) (string, error) {
	name := strings.TrimSpace(fullName)
	if len(name) < 2 {
		return "", fmt.Errorf("%w: full name must have at least 2 characters", ErrInvalid)
	}
	if len(name) > 100 {
		return "", fmt.Errorf("%w: full name must have at most 100 characters", ErrInvalid)
	}
	return name, nil
}

func (s *recipientService) CreateRecipient(ctx context.Context, input RecipientInput) (*NotificationRecipient, error) {
	name, err := validateFullName(input.FullName)
	if err != nil {
		return nil, err
	}
	phone, err := NormalizePhone(input.Phone)
	if err != nil {
		return nil, err
	}

	var exists bool
	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM notification_recipients WHERE phone = $1)", phone,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check phone: %w", err)
	}
	if exists {
		return nil, ErrDuplicatePhone
	}

	r, err := scanRecipient(s.pool.QueryRow(ctx, `
		INSERT INTO notification_recipients (full_name, phone)
		VALUES ($1, $2)
		RETURNING `+recipientColumns,
		name, phone))
	if err != nil {
		return nil, fmt.Errorf("failed to insert recipient: %w", err)
	}
	return r, nil
}

func (s *recipientService) UpdateRecipient(ctx context.Context, id int, input RecipientInput) (*NotificationRecipient, error) {
	// Fetched without the active filter: updating a soft-deleted recipient
	// with is_active=true is how a number gets back into service.
	prev, err := scanRecipient(s.pool.QueryRow(ctx,
		`SELECT `+recipientColumns+` FROM notification_recipients WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("recipient %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch recipient %d: %w", id, err)
	}

	name := prev.FullName
	if strings.TrimSpace(input.FullName) != "" {
		if name, err = validateFullName(input.FullName); err != nil {
			return nil, err
		}
	}

	phone := prev.Phone
	if strings.TrimSpace(input.Phone) != "" {
		if phone, err = NormalizePhone(input.Phone); err != nil {
			return nil, err
		}
		if phone != prev.Phone {
			var exists bool
			if err := s.pool.QueryRow(ctx,
				"SELECT EXISTS (SELECT 1 FROM notification_recipients WHERE phone = $1 AND id <> $2)", phone, id,
			).Scan(&exists); err != nil {
				return nil, fmt.Errorf("failed to check phone: %w", err)
			}
			if exists {
				return nil, ErrDuplicatePhone
			}
		}
	}

	active := prev.IsActive
	if input.IsActive != nil {
		active = *input.IsActive
	}

	r, err := scanRecipient(s.pool.QueryRow(ctx, `
		UPDATE notification_recipients
		SET full_name = $1, phone = $2, is_active = $3
		WHERE id = $4
		RETURNING `+recipientColumns,
		name, phone, active, id))
	if err != nil {
		return nil, fmt.Errorf("failed to update recipient %d: %w", id, err)
	}
	return r, nil
}

func (s *recipientService) DeleteRecipient(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE notification_recipients SET is_active = false WHERE id = $1 AND is_active = true", id)
	if err != nil {
		return fmt.Errorf("failed to delete recipient %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recipient %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *recipientService) GetStatus(ctx context.Context) (*RecipientStatus, error) {
	var total int
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM notification_recipients WHERE is_active = true",
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count recipients: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+recipientColumns+`
		FROM notification_recipients
		WHERE is_active = true
		ORDER BY last_notification DESC NULLS LAST
		LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent recipients: %w", err)
	}
	defer rows.Close()

	status := &RecipientStatus{TotalRecipients: total, HasRecipients: total > 0}
	for rows.Next() {
		r, err := scanRecipient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipient: %w", err)
		}
		status.RecentRecipients = append(status.RecentRecipients, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipients: %w", err)
	}
	return status, nil
}

func (s *recipientService) TouchLastNotification(ctx context.Context, ids []int, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		"UPDATE notification_recipients SET last_notification = $1 WHERE id = ANY($2)", at, ids)
	if err != nil {
		return fmt.Errorf("failed to stamp last notification: %w", err)
	}
	return nil
}
