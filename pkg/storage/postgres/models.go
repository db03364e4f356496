package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ContactSubmission is a message left through the contact form.
type ContactSubmission struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:text;not null" json:"name"`
	Email     string    `gorm:"type:text;not null;index:idx_contact_email" json:"email"`
	Subject   string    `gorm:"type:text" json:"subject,omitempty"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	FormType  string    `gorm:"type:varchar(32);not null" json:"formType"`
	IPAddress string    `gorm:"type:varchar(64)" json:"ipAddress,omitempty"`
	UserAgent string    `gorm:"type:text" json:"userAgent,omitempty"`
	Source    string    `gorm:"type:text" json:"source,omitempty"`
	Status    string    `gorm:"type:varchar(16);not null" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_contact_created_at" json:"createdAt"`
}

func (ContactSubmission) TableName() string {
	return "contact_submission"
}

// NewsletterSubscription is keyed by email. Unsubscribing keeps the row.
type NewsletterSubscription struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string     `gorm:"type:text;not null;uniqueIndex:idx_newsletter_email" json:"email"`
	Name           string     `gorm:"type:text" json:"name,omitempty"`
	Source         string     `gorm:"type:text" json:"source,omitempty"`
	IPAddress      string     `gorm:"type:varchar(64)" json:"ipAddress,omitempty"`
	Subscribed     bool       `gorm:"not null" json:"subscribed"`
	SubscribedAt   time.Time  `gorm:"not null" json:"subscribedAt"`
	UnsubscribedAt *time.Time `json:"unsubscribedAt,omitempty"`
}

func (NewsletterSubscription) TableName() string {
	return "newsletter_subscription"
}

type AffiliatePartner struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string          `gorm:"type:text;not null" json:"name"`
	Category string          `gorm:"type:varchar(64);not null;index:idx_partner_category" json:"category"`
	Website  string          `gorm:"type:text" json:"website,omitempty"`
	Priority int             `gorm:"not null;index:idx_partner_priority" json:"priority"`
	IsActive bool            `gorm:"not null" json:"isActive"`
	Links    []AffiliateLink `gorm:"foreignKey:PartnerID" json:"links,omitempty"`
}

func (AffiliatePartner) TableName() string {
	return "affiliate_partner"
}

type AffiliateLink struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	PartnerID   uuid.UUID         `gorm:"type:uuid;not null;index:idx_link_partner" json:"partnerId"`
	Partner     *AffiliatePartner `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	TargetURL   string            `gorm:"type:text;not null" json:"targetUrl"`
	UTMSource   string            `gorm:"type:text" json:"utmSource,omitempty"`
	UTMMedium   string            `gorm:"type:text" json:"utmMedium,omitempty"`
	UTMCampaign string            `gorm:"type:text" json:"utmCampaign,omitempty"`
	UTMContent  string            `gorm:"type:text" json:"utmContent,omitempty"`
	Placement   string            `gorm:"type:varchar(64)" json:"placement,omitempty"`
	PageContext string            `gorm:"type:varchar(64)" json:"pageContext,omitempty"`
	IsActive    bool              `gorm:"not null" json:"isActive"`
}

func (AffiliateLink) TableName() string {
	return "affiliate_link"
}

type AffiliateClick struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LinkID    uuid.UUID `gorm:"type:uuid;not null;index:idx_click_link" json:"linkId"`
	PartnerID uuid.UUID `gorm:"type:uuid;not null;index:idx_click_partner" json:"partnerId"`
	SessionID string    `gorm:"type:text" json:"sessionId,omitempty"`
	IPAddress string    `gorm:"type:varchar(64)" json:"ipAddress,omitempty"`
	UserAgent string    `gorm:"type:text" json:"userAgent,omitempty"`
	Referrer  string    `gorm:"type:text" json:"referrer,omitempty"`
	Device    string    `gorm:"type:varchar(16);not null;index:idx_click_device" json:"device"`
	CreatedAt time.Time `gorm:"not null;index:idx_click_created_at" json:"timestamp"`
}

func (AffiliateClick) TableName() string {
	return "affiliate_click"
}

// Conversion statuses. Only confirmed and paid conversions count as revenue.
const (
	ConversionPending   = "pending"
	ConversionConfirmed = "confirmed"
	ConversionPaid      = "paid"
	ConversionRejected  = "rejected"
)

type AffiliateConversion struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	PartnerID  uuid.UUID         `gorm:"type:uuid;not null;index:idx_conversion_partner" json:"partnerId"`
	Partner    *AffiliatePartner `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	ClickID    *uuid.UUID        `gorm:"type:uuid" json:"clickId,omitempty"`
	SessionID  string            `gorm:"type:text" json:"sessionId,omitempty"`
	Commission decimal.Decimal   `gorm:"type:numeric(18,2);not null" json:"commission"`
	Status     string            `gorm:"type:varchar(16);not null;index:idx_conversion_status" json:"status"`
	CreatedAt  time.Time         `gorm:"not null;index:idx_conversion_created_at" json:"timestamp"`
}

func (AffiliateConversion) TableName() string {
	return "affiliate_conversion"
}

// Models lists every table managed by AutoMigrate, parents first.
func Models() []any {
	return []any{
		&ContactSubmission{},
		&NewsletterSubscription{},
		&AffiliatePartner{},
		&AffiliateLink{},
		&AffiliateClick{},
		&AffiliateConversion{},
	}
}

func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (c *ContactSubmission) BeforeCreate(*gorm.DB) error {
	newID(&c.ID)
	return nil
}

func (n *NewsletterSubscription) BeforeCreate(*gorm.DB) error {
	newID(&n.ID)
	return nil
}

func (p *AffiliatePartner) BeforeCreate(*gorm.DB) error {
	newID(&p.ID)
	return nil
}

func (l *AffiliateLink) BeforeCreate(*gorm.DB) error {
	newID(&l.ID)
	return nil
}

func (c *AffiliateClick) BeforeCreate(*gorm.DB) error {
	newID(&c.ID)
	return nil
}

func (c *AffiliateConversion) BeforeCreate(*gorm.DB) error {
	newID(&c.ID)
	return nil
}
