package core

import "time"

// NotificationRecipient is a person who receives WhatsApp alerts. Phone is
// stored normalized (digits only, 10 or 11 of them). Recipients are
// soft-deleted by clearing IsActive.
type NotificationRecipient struct {
	ID               int        `json:"id"`
	FullName         string     `json:"full_name"`
	Phone            string     `json:"phone"`
	IsActive         bool       `json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
	LastNotification *time.Time `json:"last_notification,omitempty"`
}

// FormattedPhone returns the display form of the recipient's phone.
func (r NotificationRecipient) FormattedPhone() string {
	return FormatPhone(r.Phone)
}

// RecipientInput is the payload for creating or updating a recipient.
type RecipientInput struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	IsActive *bool  `json:"is_active"`
}

// RecipientStatus summarizes the delivery-target situation: hasRecipients
// false is the user-visible "no one to notify" condition, which is distinct
// from "no items need notification".
type RecipientStatus struct {
	TotalRecipients  int                     `json:"total_recipients"`
	HasRecipients    bool                    `json:"has_recipients"`
	RecentRecipients []NotificationRecipient `json:"recent_recipients"`
}
