package postgres

import (
	"context"
	"time"
)

func (p *PostgresClient) GetNewsletterSubscription(ctx context.Context, email string) (*NewsletterSubscription, error) {
	var sub NewsletterSubscription
	if err := p.DB.WithContext(ctx).Where("email = ?", email).First(&sub).Error; err != nil {
		return nil, notFound(err)
	}
	return &sub, nil
}

func (p *PostgresClient) InsertNewsletterSubscription(ctx context.Context, sub *NewsletterSubscription) error {
	return p.DB.WithContext(ctx).Create(sub).Error
}

// Resubscribe flips an existing row back to subscribed and clears the
// unsubscribe time.
func (p *PostgresClient) Resubscribe(ctx context.Context, email, name string, at time.Time) error {
	tx := p.DB.WithContext(ctx).
		Model(&NewsletterSubscription{}).
		Where("email = ?", email).
		Updates(map[string]any{
			"subscribed":      true,
			"name":            name,
			"subscribed_at":   at,
			"unsubscribed_at": nil,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresClient) Unsubscribe(ctx context.Context, email string, at time.Time) error {
	tx := p.DB.WithContext(ctx).
		Model(&NewsletterSubscription{}).
		Where("email = ?", email).
		Updates(map[string]any{
			"subscribed":      false,
			"unsubscribed_at": at,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
