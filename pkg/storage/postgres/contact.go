package postgres

import (
	"context"
	"time"
)

func (p *PostgresClient) InsertContactSubmission(ctx context.Context, s *ContactSubmission) error {
	return p.DB.WithContext(ctx).Create(s).Error
}

// ContactSubmissionsSince lists submissions newest first.
func (p *PostgresClient) ContactSubmissionsSince(ctx context.Context, since time.Time) ([]ContactSubmission, error) {
	var out []ContactSubmission
	err := p.DB.WithContext(ctx).
		Where("created_at >= ?", since.UTC()).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}
