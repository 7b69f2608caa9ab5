package app

import (
	"context"
	"time"

	"despensa/internal/core"
)

// ApplicationService is the single interface all UI adapters call. It
// decouples presentation from business logic. Implementations must contain
// no display logic of any kind.
type ApplicationService interface {
	// ListItems returns every pantry item.
	ListItems(ctx context.Context) (*ItemListResult, error)

	// GetItem returns a single item with its current eligibility evaluation.
	GetItem(ctx context.Context, id int) (*ItemResult, error)

	// CreateItem registers a new pantry item. TotalStock is derived from the
	// entry/exit quantities; both notified flags start false.
	CreateItem(ctx context.Context, input core.ItemInput) (*ItemResult, error)

	// UpdateItem applies a partial update, recomputing TotalStock and
	// resetting resolved notification episodes.
	UpdateItem(ctx context.Context, id int, upd core.ItemUpdate) (*ItemResult, error)

	// DeleteItem removes an item.
	DeleteItem(ctx context.Context, id int) error

	// GetAlerts rebuilds the notification sets and the full dispatch plan
	// for the current instant.
	GetAlerts(ctx context.Context) (*AlertsResult, error)

	// MarkItemNotified records a confirmed dispatch of one alert kind for one
	// item. kind is "stock" or "expiry".
	MarkItemNotified(ctx context.Context, id int, kind core.AlertKind) (*ItemResult, error)

	// ConfirmDispatch records a confirmed dispatch of a whole alert round.
	ConfirmDispatch(ctx context.Context, plan *core.DispatchPlan) error

	// BuildWhatsAppLinks turns raw phones and a message into wa.me deep links.
	BuildWhatsAppLinks(phones []string, message string) (*WhatsAppLinksResult, error)

	// ListRecipients returns all active notification recipients.
	ListRecipients(ctx context.Context) (*RecipientListResult, error)

	// GetRecipient returns one active recipient.
	GetRecipient(ctx context.Context, id int) (*RecipientResult, error)

	// CreateRecipient registers a delivery target.
	CreateRecipient(ctx context.Context, input core.RecipientInput) (*RecipientResult, error)

	// UpdateRecipient changes a recipient's name, phone, or active flag.
	UpdateRecipient(ctx context.Context, id int, input core.RecipientInput) (*RecipientResult, error)

	// DeleteRecipient soft-deletes a recipient.
	DeleteRecipient(ctx context.Context, id int) error

	// GetRecipientStatus summarizes the delivery-target situation.
	GetRecipientStatus(ctx context.Context) (*core.RecipientStatus, error)

	// RegisterUser creates an application user.
	RegisterUser(ctx context.Context, username, password string) (*UserSession, error)

	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error)
}

// ItemResult is returned by single-item operations.
type ItemResult struct {
	Item       *core.Item       `json:"item"`
	Evaluation *core.Evaluation `json:"evaluation,omitempty"`
}

// ItemListResult is returned by ListItems.
type ItemListResult struct {
	Items []core.Item `json:"items"`
}

// AlertsResult is returned by GetAlerts.
type AlertsResult struct {
	Plan *core.DispatchPlan `json:"plan"`
	// HasRecipients false together with non-empty sets is the "no one to
	// notify" condition.
	HasRecipients bool `json:"has_recipients"`
}

// WhatsAppLinksResult is returned by BuildWhatsAppLinks.
type WhatsAppLinksResult struct {
	Links []string `json:"whatsapp_links"`
}

// RecipientResult is returned by single-recipient operations.
type RecipientResult struct {
	Recipient      *core.NotificationRecipient `json:"recipient"`
	FormattedPhone string                      `json:"formatted_phone"`
}

// RecipientListResult is returned by ListRecipients.
type RecipientListResult struct {
	Recipients []core.NotificationRecipient `json:"recipients"`
}

// UserSession is returned by RegisterUser and AuthenticateUser.
type UserSession struct {
	UserID    int        `json:"user_id"`
	Username  string     `json:"username"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}
