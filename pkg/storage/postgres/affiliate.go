package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (p *PostgresClient) InsertPartner(ctx context.Context, partner *AffiliatePartner) error {
	return p.DB.WithContext(ctx).Create(partner).Error
}

func (p *PostgresClient) InsertLink(ctx context.Context, link *AffiliateLink) error {
	return p.DB.WithContext(ctx).Create(link).Error
}

func (p *PostgresClient) GetPartner(ctx context.Context, id uuid.UUID) (*AffiliatePartner, error) {
	var partner AffiliatePartner
	if err := p.DB.WithContext(ctx).Where("id = ?", id).First(&partner).Error; err != nil {
		return nil, notFound(err)
	}
	return &partner, nil
}

// GetLink loads a link together with its partner.
func (p *PostgresClient) GetLink(ctx context.Context, id uuid.UUID) (*AffiliateLink, error) {
	var link AffiliateLink
	err := p.DB.WithContext(ctx).
		Preload("Partner").
		Where("id = ?", id).
		First(&link).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &link, nil
}

// PartnerFilter narrows ListPartners. Empty fields match everything.
type PartnerFilter struct {
	Category    string
	Placement   string
	PageContext string
	Limit       int
}

// ListPartners returns active partners by descending priority, each with its
// active links matching the placement and page context.
func (p *PostgresClient) ListPartners(ctx context.Context, f PartnerFilter) ([]AffiliatePartner, error) {
	q := p.DB.WithContext(ctx).
		Preload("Links", func(db *gorm.DB) *gorm.DB {
			db = db.Where("is_active = ?", true)
			if f.Placement != "" {
				db = db.Where("placement = ?", f.Placement)
			}
			if f.PageContext != "" {
				db = db.Where("page_context = ?", f.PageContext)
			}
			return db
		}).
		Where("is_active = ?", true)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var partners []AffiliatePartner
	if err := q.Order("priority desc").Find(&partners).Error; err != nil {
		return nil, err
	}
	return partners, nil
}

func (p *PostgresClient) InsertClick(ctx context.Context, click *AffiliateClick) error {
	return p.DB.WithContext(ctx).Create(click).Error
}

func (p *PostgresClient) InsertConversion(ctx context.Context, conv *AffiliateConversion) error {
	return p.DB.WithContext(ctx).Create(conv).Error
}

func (p *PostgresClient) CountClicksSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := p.DB.WithContext(ctx).
		Model(&AffiliateClick{}).
		Where("created_at >= ?", since.UTC()).
		Count(&n).Error
	return n, err
}

type groupCount struct {
	GroupKey string
	Total    int64
}

func (p *PostgresClient) countClicksBy(ctx context.Context, column string, since time.Time, scope func(*gorm.DB) *gorm.DB) (map[string]int64, error) {
	q := p.DB.WithContext(ctx).
		Model(&AffiliateClick{}).
		Select(column+" AS group_key, COUNT(*) AS total").
		Where("created_at >= ?", since.UTC())
	if scope != nil {
		q = scope(q)
	}

	var rows []groupCount
	if err := q.Group(column).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.GroupKey] = r.Total
	}
	return out, nil
}

// ClicksByPartnerSince counts clicks per partner id for the given partners.
func (p *PostgresClient) ClicksByPartnerSince(ctx context.Context, since time.Time, partnerIDs []uuid.UUID) (map[string]int64, error) {
	if len(partnerIDs) == 0 {
		return map[string]int64{}, nil
	}
	ids := make([]string, len(partnerIDs))
	for i, id := range partnerIDs {
		ids[i] = id.String()
	}
	return p.countClicksBy(ctx, "partner_id", since, func(db *gorm.DB) *gorm.DB {
		return db.Where("partner_id IN ?", ids)
	})
}

func (p *PostgresClient) ClicksByDeviceSince(ctx context.Context, since time.Time) (map[string]int64, error) {
	return p.countClicksBy(ctx, "device", since, nil)
}

// ConversionsSince lists conversions in the given statuses with their partner.
func (p *PostgresClient) ConversionsSince(ctx context.Context, since time.Time, statuses ...string) ([]AffiliateConversion, error) {
	q := p.DB.WithContext(ctx).
		Preload("Partner").
		Where("created_at >= ?", since.UTC())
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}

	var out []AffiliateConversion
	if err := q.Order("created_at").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteClicksBefore removes clicks recorded before the cutoff and reports how
// many rows went.
func (p *PostgresClient) DeleteClicksBefore(ctx context.Context, before time.Time) (int64, error) {
	tx := p.DB.WithContext(ctx).
		Where("created_at < ?", before.UTC()).
		Delete(&AffiliateClick{})
	return tx.RowsAffected, tx.Error
}
