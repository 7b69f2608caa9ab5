package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"despensa/internal/core"
)

type appService struct {
	items       core.ItemService
	recipients  core.RecipientService
	users       core.UserService
	notifier    core.NotificationService
	countryCode string
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	items core.ItemService,
	recipients core.RecipientService,
	users core.UserService,
	notifier core.NotificationService,
	countryCode string,
) ApplicationService {
	if countryCode == "" {
		countryCode = core.DefaultCountryCode
	}
	return &appService{
		items:       items,
		recipients:  recipients,
		users:       users,
		notifier:    notifier,
		countryCode: countryCode,
	}
}

func (s *appService) ListItems(ctx context.Context) (*ItemListResult, error) {
	items, err := s.items.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	return &ItemListResult{Items: items}, nil
}

func (s *appService) GetItem(ctx context.Context, id int) (*ItemResult, error) {
	item, err := s.items.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	ev := core.Evaluate(*item, time.Now())
	return &ItemResult{Item: item, Evaluation: &ev}, nil
}

func (s *appService) CreateItem(ctx context.Context, input core.ItemInput) (*ItemResult, error) {
	item, err := s.items.CreateItem(ctx, input)
	if err != nil {
		return nil, err
	}
	ev := core.Evaluate(*item, time.Now())
	return &ItemResult{Item: item, Evaluation: &ev}, nil
}

func (s *appService) UpdateItem(ctx context.Context, id int, upd core.ItemUpdate) (*ItemResult, error) {
	item, err := s.items.UpdateItem(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	ev := core.Evaluate(*item, time.Now())
	return &ItemResult{Item: item, Evaluation: &ev}, nil
}

func (s *appService) DeleteItem(ctx context.Context, id int) error {
	return s.items.DeleteItem(ctx, id)
}

func (s *appService) GetAlerts(ctx context.Context) (*AlertsResult, error) {
	plan, err := s.notifier.PrepareDispatch(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	return &AlertsResult{Plan: plan, HasRecipients: len(plan.Recipients) > 0}, nil
}

func (s *appService) MarkItemNotified(ctx context.Context, id int, kind core.AlertKind) (*ItemResult, error) {
	if kind != core.AlertStock && kind != core.AlertExpiry {
		return nil, fmt.Errorf("unknown alert kind %q", kind)
	}
	item, err := s.items.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.items.ApplyNotifiedPatch(ctx, id, core.MarkNotified(*item, kind, time.Now()))
	if err != nil {
		return nil, err
	}
	ev := core.Evaluate(*updated, time.Now())
	return &ItemResult{Item: updated, Evaluation: &ev}, nil
}

func (s *appService) ConfirmDispatch(ctx context.Context, plan *core.DispatchPlan) error {
	return s.notifier.ConfirmDispatch(ctx, plan)
}

func (s *appService) BuildWhatsAppLinks(phones []string, message string) (*WhatsAppLinksResult, error) {
	if len(phones) == 0 {
		return nil, errors.New("phone list is required")
	}
	if message == "" {
		return nil, errors.New("message is required")
	}
	links := core.BuildWhatsAppLinks(phones, message, s.countryCode)
	if len(links) == 0 {
		return nil, errors.New("no valid phone numbers in list")
	}
	return &WhatsAppLinksResult{Links: links}, nil
}

func (s *appService) ListRecipients(ctx context.Context) (*RecipientListResult, error) {
	recipients, err := s.recipients.ListRecipients(ctx)
	if err != nil {
		return nil, err
	}
	return &RecipientListResult{Recipients: recipients}, nil
}

func (s *appService) GetRecipient(ctx context.Context, id int) (*RecipientResult, error) {
	r, err := s.recipients.GetRecipient(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RecipientResult{Recipient: r, FormattedPhone: r.FormattedPhone()}, nil
}

func (s *appService) CreateRecipient(ctx context.Context, input core.RecipientInput) (*RecipientResult, error) {
	r, err := s.recipients.CreateRecipient(ctx, input)
	if err != nil {
		return nil, err
	}
	return &RecipientResult{Recipient: r, FormattedPhone: r.FormattedPhone()}, nil
}

func (s *appService) UpdateRecipient(ctx context.Context, id int, input core.RecipientInput) (*RecipientResult, error) {
	r, err := s.recipients.UpdateRecipient(ctx, id, input)
	if err != nil {
		return nil, err
	}
	return &RecipientResult{Recipient: r, FormattedPhone: r.FormattedPhone()}, nil
}

func (s *appService) DeleteRecipient(ctx context.Context, id int) error {
	return s.recipients.DeleteRecipient(ctx, id)
}

func (s *appService) GetRecipientStatus(ctx context.Context) (*core.RecipientStatus, error) {
	return s.recipients.GetStatus(ctx)
}

func (s *appService) RegisterUser(ctx context.Context, username, password string) (*UserSession, error) {
	u, err := s.users.CreateUser(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return &UserSession{UserID: u.ID, Username: u.Username, LastLogin: u.LastLogin}, nil
}

func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error) {
	u, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return &UserSession{UserID: u.ID, Username: u.Username, LastLogin: u.LastLogin}, nil
}
