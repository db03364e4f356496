// Package affiliate tracks partner link clicks and conversions and reports
// monetization metrics.
package affiliate

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cryptoconvert/pkg/storage/postgres"
)

var (
	ErrLinkRequired      = errors.New("link ID is required")
	ErrLinkNotFound      = errors.New("invalid or inactive link")
	ErrPartnerNotFound   = errors.New("partner not found")
	ErrInvalidClickID    = errors.New("invalid click ID")
	ErrInvalidCommission = errors.New("commission must not be negative")
	ErrInvalidStatus     = errors.New("unknown conversion status")
)

const (
	DefaultPartnerLimit = 10

	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"

	unknownIP = "unknown"
)

type Store interface {
	GetLink(ctx context.Context, id uuid.UUID) (*postgres.AffiliateLink, error)
	GetPartner(ctx context.Context, id uuid.UUID) (*postgres.AffiliatePartner, error)
	ListPartners(ctx context.Context, f postgres.PartnerFilter) ([]postgres.AffiliatePartner, error)
	InsertClick(ctx context.Context, click *postgres.AffiliateClick) error
	InsertConversion(ctx context.Context, conv *postgres.AffiliateConversion) error
	CountClicksSince(ctx context.Context, since time.Time) (int64, error)
	ClicksByPartnerSince(ctx context.Context, since time.Time, partnerIDs []uuid.UUID) (map[string]int64, error)
	ClicksByDeviceSince(ctx context.Context, since time.Time) (map[string]int64, error)
	ConversionsSince(ctx context.Context, since time.Time, statuses ...string) ([]postgres.AffiliateConversion, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// DetectDevice classifies a user agent. "Mobile" wins over "Tablet".
func DetectDevice(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Mobile"):
		return DeviceMobile
	case strings.Contains(userAgent, "Tablet"):
		return DeviceTablet
	default:
		return DeviceDesktop
	}
}

// TrackingURL appends the link's UTM parameters and the session reference to
// its target, always in the order utm_source, utm_medium, utm_campaign,
// utm_content, ref. Empty values are left out.
func TrackingURL(link *postgres.AffiliateLink, sessionID string) string {
	params := []struct{ key, value string }{
		{"utm_source", link.UTMSource},
		{"utm_medium", link.UTMMedium},
		{"utm_campaign", link.UTMCampaign},
		{"utm_content", link.UTMContent},
		{"ref", sessionID},
	}

	var q strings.Builder
	for _, p := range params {
		if p.value == "" {
			continue
		}
		if q.Len() > 0 {
			q.WriteByte('&')
		}
		q.WriteString(url.QueryEscape(p.key))
		q.WriteByte('=')
		q.WriteString(url.QueryEscape(p.value))
	}
	if q.Len() == 0 {
		return link.TargetURL
	}

	sep := "?"
	if strings.Contains(link.TargetURL, "?") {
		sep = "&"
	}
	return link.TargetURL + sep + q.String()
}

type Click struct {
	LinkID    string
	SessionID string
	IPAddress string
	UserAgent string
	Referrer  string
}

type ClickResult struct {
	ClickID     uuid.UUID `json:"clickId"`
	RedirectURL string    `json:"redirectUrl"`
	Partner     string    `json:"partner"`
}

// RecordClick stores a click on an active link and returns where to send the
// visitor.
func (s *Service) RecordClick(ctx context.Context, c Click) (*ClickResult, error) {
	if strings.TrimSpace(c.LinkID) == "" {
		return nil, ErrLinkRequired
	}
	linkID, err := uuid.Parse(c.LinkID)
	if err != nil {
		return nil, ErrLinkNotFound
	}

	link, err := s.store.GetLink(ctx, linkID)
	if errors.Is(err, postgres.ErrNotFound) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load link: %w", err)
	}
	if !link.IsActive {
		return nil, ErrLinkNotFound
	}

	ip := c.IPAddress
	if ip == "" {
		ip = unknownIP
	}
	click := &postgres.AffiliateClick{
		LinkID:    link.ID,
		PartnerID: link.PartnerID,
		SessionID: c.SessionID,
		IPAddress: ip,
		UserAgent: c.UserAgent,
		Referrer:  c.Referrer,
		Device:    DetectDevice(c.UserAgent),
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.InsertClick(ctx, click); err != nil {
		return nil, fmt.Errorf("record click: %w", err)
	}

	res := &ClickResult{
		ClickID:     click.ID,
		RedirectURL: TrackingURL(link, c.SessionID),
	}
	if link.Partner != nil {
		res.Partner = link.Partner.Name
	}
	return res, nil
}

type Conversion struct {
	PartnerID  string
	ClickID    string
	SessionID  string
	Commission decimal.Decimal
	Status     string
}

func validStatus(status string) bool {
	switch status {
	case postgres.ConversionPending, postgres.ConversionConfirmed, postgres.ConversionPaid, postgres.ConversionRejected:
		return true
	}
	return false
}

// RecordConversion stores a conversion for an existing partner. Status
// defaults to pending.
func (s *Service) RecordConversion(ctx context.Context, c Conversion) (*postgres.AffiliateConversion, error) {
	partnerID, err := uuid.Parse(c.PartnerID)
	if err != nil {
		return nil, ErrPartnerNotFound
	}
	if c.Commission.IsNegative() {
		return nil, ErrInvalidCommission
	}
	if c.Status == "" {
		c.Status = postgres.ConversionPending
	}
	if !validStatus(c.Status) {
		return nil, ErrInvalidStatus
	}

	var clickID *uuid.UUID
	if c.ClickID != "" {
		id, err := uuid.Parse(c.ClickID)
		if err != nil {
			return nil, ErrInvalidClickID
		}
		clickID = &id
	}

	if _, err := s.store.GetPartner(ctx, partnerID); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, fmt.Errorf("load partner: %w", err)
	}

	conv := &postgres.AffiliateConversion{
		PartnerID:  partnerID,
		ClickID:    clickID,
		SessionID:  c.SessionID,
		Commission: c.Commission.Round(2),
		Status:     c.Status,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.store.InsertConversion(ctx, conv); err != nil {
		return nil, fmt.Errorf("record conversion: %w", err)
	}
	return conv, nil
}

// Partners lists active partners, highest priority first.
func (s *Service) Partners(ctx context.Context, f postgres.PartnerFilter) ([]postgres.AffiliatePartner, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultPartnerLimit
	}
	partners, err := s.store.ListPartners(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	if partners == nil {
		partners = []postgres.AffiliatePartner{}
	}
	return partners, nil
}
