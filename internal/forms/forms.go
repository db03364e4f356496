// Package forms handles the contact form and newsletter sign-ups.
package forms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"cryptoconvert/internal/notify"
	"cryptoconvert/pkg/storage/postgres"
)

var (
	ErrMissingFields     = errors.New("name, email, and message are required")
	ErrInvalidEmail      = errors.New("valid email is required")
	ErrAlreadySubscribed = errors.New("email already subscribed")
	ErrNotSubscribed     = errors.New("email is not subscribed")
)

const (
	DefaultFormType = "contact"
	statusNew       = "new"
)

type Store interface {
	InsertContactSubmission(ctx context.Context, s *postgres.ContactSubmission) error
	GetNewsletterSubscription(ctx context.Context, email string) (*postgres.NewsletterSubscription, error)
	InsertNewsletterSubscription(ctx context.Context, sub *postgres.NewsletterSubscription) error
	Resubscribe(ctx context.Context, email, name string, at time.Time) error
	Unsubscribe(ctx context.Context, email string, at time.Time) error
}

type Service struct {
	store    Store
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(store Store, notifier notify.Notifier, logger *zap.Logger) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, notifier: notifier, logger: logger, now: time.Now}
}

func validEmail(email string) bool {
	return strings.Contains(email, "@")
}

// Contact is a contact form submission plus request metadata.
type Contact struct {
	Name      string
	Email     string
	Subject   string
	Message   string
	FormType  string
	IPAddress string
	UserAgent string
	Source    string
}

// SubmitContact validates and stores a submission, then notifies operators.
// A failed notification is logged and does not fail the submission.
func (s *Service) SubmitContact(ctx context.Context, c Contact) (*postgres.ContactSubmission, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	if c.Name == "" || c.Email == "" || strings.TrimSpace(c.Message) == "" {
		return nil, ErrMissingFields
	}
	if !validEmail(c.Email) {
		return nil, ErrInvalidEmail
	}
	if c.FormType == "" {
		c.FormType = DefaultFormType
	}

	sub := &postgres.ContactSubmission{
		Name:      c.Name,
		Email:     c.Email,
		Subject:   c.Subject,
		Message:   c.Message,
		FormType:  c.FormType,
		IPAddress: c.IPAddress,
		UserAgent: c.UserAgent,
		Source:    c.Source,
		Status:    statusNew,
	}
	if err := s.store.InsertContactSubmission(ctx, sub); err != nil {
		return nil, fmt.Errorf("store contact submission: %w", err)
	}

	err := s.notifier.NotifyContact(ctx, notify.Contact{
		Name:     sub.Name,
		Email:    sub.Email,
		Subject:  sub.Subject,
		Message:  sub.Message,
		FormType: sub.FormType,
		Source:   sub.Source,
	})
	if err != nil {
		s.logger.Warn("contact notification failed", zap.String("id", sub.ID.String()), zap.Error(err))
	}
	return sub, nil
}

type Subscription struct {
	Email     string
	Name      string
	Source    string
	IPAddress string
}

// Subscribe creates a subscription, or reactivates one that was cancelled.
// It reports whether an existing row was reactivated.
func (s *Service) Subscribe(ctx context.Context, in Subscription) (bool, error) {
	email := strings.TrimSpace(in.Email)
	if !validEmail(email) {
		return false, ErrInvalidEmail
	}

	existing, err := s.store.GetNewsletterSubscription(ctx, email)
	switch {
	case err == nil && existing.Subscribed:
		return false, ErrAlreadySubscribed
	case err == nil:
		if err := s.store.Resubscribe(ctx, email, in.Name, s.now().UTC()); err != nil {
			return false, fmt.Errorf("resubscribe: %w", err)
		}
		return true, nil
	case !errors.Is(err, postgres.ErrNotFound):
		return false, fmt.Errorf("lookup subscription: %w", err)
	}

	sub := &postgres.NewsletterSubscription{
		Email:        email,
		Name:         in.Name,
		Source:       in.Source,
		IPAddress:    in.IPAddress,
		Subscribed:   true,
		SubscribedAt: s.now().UTC(),
	}
	if err := s.store.InsertNewsletterSubscription(ctx, sub); err != nil {
		return false, fmt.Errorf("create subscription: %w", err)
	}
	return false, nil
}

func (s *Service) Unsubscribe(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !validEmail(email) {
		return ErrInvalidEmail
	}
	if err := s.store.Unsubscribe(ctx, email, s.now().UTC()); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return ErrNotSubscribed
		}
		return fmt.Errorf("unsubscribe: %w", err)
	}
	return nil
}
