package affiliate

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cryptoconvert/pkg/storage/postgres"
)

const (
	DefaultMetricsDays = 30
	topPartnerCount    = 5
	unknownCategory    = "unknown"
)

type PartnerRevenue struct {
	Partner     *postgres.AffiliatePartner `json:"partner"`
	Revenue     decimal.Decimal            `json:"revenue"`
	Conversions int                        `json:"conversions"`
	Clicks      int64                      `json:"clicks"`
}

type Metrics struct {
	TotalClicks       int64                      `json:"totalClicks"`
	TotalConversions  int                        `json:"totalConversions"`
	TotalRevenue      decimal.Decimal            `json:"totalRevenue"`
	ConversionRate    float64                    `json:"conversionRate"`
	TopPartners       []PartnerRevenue           `json:"topPartners"`
	RevenueByCategory map[string]decimal.Decimal `json:"revenueByCategory"`
	ClicksByDevice    map[string]int64           `json:"clicksByDevice"`
}

// Metrics summarises the last days days. Only confirmed and paid conversions
// count; the conversion rate is a percentage rounded to two places.
func (s *Service) Metrics(ctx context.Context, days int) (*Metrics, error) {
	if days <= 0 {
		days = DefaultMetricsDays
	}
	since := s.now().UTC().AddDate(0, 0, -days)

	totalClicks, err := s.store.CountClicksSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("count clicks: %w", err)
	}
	convs, err := s.store.ConversionsSince(ctx, since, postgres.ConversionConfirmed, postgres.ConversionPaid)
	if err != nil {
		return nil, fmt.Errorf("load conversions: %w", err)
	}

	m := &Metrics{
		TotalClicks:       totalClicks,
		TotalConversions:  len(convs),
		TotalRevenue:      decimal.Zero,
		TopPartners:       []PartnerRevenue{},
		RevenueByCategory: map[string]decimal.Decimal{},
	}
	if totalClicks > 0 {
		rate := float64(len(convs)) / float64(totalClicks) * 100
		m.ConversionRate = math.Round(rate*100) / 100
	}

	byPartner := map[uuid.UUID]*PartnerRevenue{}
	var order []uuid.UUID
	for i := range convs {
		c := &convs[i]
		m.TotalRevenue = m.TotalRevenue.Add(c.Commission)

		category := unknownCategory
		if c.Partner != nil && c.Partner.Category != "" {
			category = c.Partner.Category
		}
		m.RevenueByCategory[category] = m.RevenueByCategory[category].Add(c.Commission)

		pr, ok := byPartner[c.PartnerID]
		if !ok {
			pr = &PartnerRevenue{Partner: c.Partner, Revenue: decimal.Zero}
			byPartner[c.PartnerID] = pr
			order = append(order, c.PartnerID)
		}
		pr.Revenue = pr.Revenue.Add(c.Commission)
		pr.Conversions++
	}

	clicks, err := s.store.ClicksByPartnerSince(ctx, since, order)
	if err != nil {
		return nil, fmt.Errorf("count partner clicks: %w", err)
	}
	for _, id := range order {
		pr := byPartner[id]
		pr.Clicks = clicks[id.String()]
		m.TopPartners = append(m.TopPartners, *pr)
	}
	sort.SliceStable(m.TopPartners, func(i, j int) bool {
		return m.TopPartners[i].Revenue.GreaterThan(m.TopPartners[j].Revenue)
	})
	if len(m.TopPartners) > topPartnerCount {
		m.TopPartners = m.TopPartners[:topPartnerCount]
	}

	if m.ClicksByDevice, err = s.store.ClicksByDeviceSince(ctx, since); err != nil {
		return nil, fmt.Errorf("count device clicks: %w", err)
	}
	return m, nil
}
