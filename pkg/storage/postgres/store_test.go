package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cryptoconvert/pkg/storage/postgres"
)

// go test -v --run TestNewsletterLifecycle
func TestNewsletterLifecycle(t *testing.T) {
	client := newSQLite(t)
	ctx := context.Background()

	if _, err := client.GetNewsletterSubscription(ctx, "a@example.com"); !errors.Is(err, postgres.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	sub := &postgres.NewsletterSubscription{Email: "a@example.com", Subscribed: true, SubscribedAt: now}
	if err := client.InsertNewsletterSubscription(ctx, sub); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if sub.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}

	if err := client.Unsubscribe(ctx, "a@example.com", now); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	got, err := client.GetNewsletterSubscription(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Subscribed || got.UnsubscribedAt == nil {
		t.Fatalf("expected unsubscribed row, got %+v", got)
	}

	if err := client.Resubscribe(ctx, "a@example.com", "Ann", now.Add(time.Minute)); err != nil {
		t.Fatalf("resubscribe: %v", err)
	}
	got, _ = client.GetNewsletterSubscription(ctx, "a@example.com")
	if !got.Subscribed || got.UnsubscribedAt != nil || got.Name != "Ann" {
		t.Fatalf("expected resubscribed row, got %+v", got)
	}

	if err := client.Unsubscribe(ctx, "nobody@example.com", now); !errors.Is(err, postgres.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func seedPartner(t *testing.T, client *postgres.PostgresClient, name, category string, priority int, active bool) *postgres.AffiliatePartner {
	t.Helper()
	p := &postgres.AffiliatePartner{Name: name, Category: category, Priority: priority, IsActive: active}
	if err := client.InsertPartner(context.Background(), p); err != nil {
		t.Fatalf("insert partner: %v", err)
	}
	return p
}

func seedLink(t *testing.T, client *postgres.PostgresClient, partner uuid.UUID, placement string, active bool) *postgres.AffiliateLink {
	t.Helper()
	l := &postgres.AffiliateLink{
		PartnerID: partner,
		TargetURL: "https://partner.example/signup",
		Placement: placement,
		IsActive:  active,
	}
	if err := client.InsertLink(context.Background(), l); err != nil {
		t.Fatalf("insert link: %v", err)
	}
	return l
}

// go test -v --run TestListPartners
func TestListPartners(t *testing.T) {
	client := newSQLite(t)
	ctx := context.Background()

	low := seedPartner(t, client, "Low", "exchange", 1, true)
	high := seedPartner(t, client, "High", "exchange", 10, true)
	wallet := seedPartner(t, client, "Wallet", "wallet", 5, true)
	seedPartner(t, client, "Off", "exchange", 100, false)

	seedLink(t, client, high.ID, "sidebar", true)
	seedLink(t, client, high.ID, "header", true)
	seedLink(t, client, high.ID, "sidebar", false)
	seedLink(t, client, low.ID, "sidebar", true)
	seedLink(t, client, wallet.ID, "sidebar", true)

	partners, err := client.ListPartners(ctx, postgres.PartnerFilter{Category: "exchange", Placement: "sidebar", Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(partners) != 2 {
		t.Fatalf("expected 2 active exchange partners, got %d", len(partners))
	}
	if partners[0].Name != "High" || partners[1].Name != "Low" {
		t.Errorf("unexpected order: %s, %s", partners[0].Name, partners[1].Name)
	}
	if len(partners[0].Links) != 1 || partners[0].Links[0].Placement != "sidebar" {
		t.Errorf("expected one active sidebar link, got %+v", partners[0].Links)
	}

	all, _ := client.ListPartners(ctx, postgres.PartnerFilter{Limit: 2})
	if len(all) != 2 || all[0].Name != "High" || all[1].Name != "Wallet" {
		t.Errorf("unexpected limited list: %+v", all)
	}
}

// go test -v --run TestClickAggregates
func TestClickAggregates(t *testing.T) {
	client := newSQLite(t)
	ctx := context.Background()

	partner := seedPartner(t, client, "High", "exchange", 10, true)
	link := seedLink(t, client, partner.ID, "sidebar", true)

	got, err := client.GetLink(ctx, link.ID)
	if err != nil || got.Partner == nil || got.Partner.Name != "High" {
		t.Fatalf("expected link with partner, got %+v err=%v", got, err)
	}
	if _, err := client.GetLink(ctx, uuid.New()); !errors.Is(err, postgres.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	now := time.Now().UTC()
	old := now.AddDate(0, 0, -400)
	for i, device := range []string{"mobile", "mobile", "desktop"} {
		click := &postgres.AffiliateClick{LinkID: link.ID, PartnerID: partner.ID, Device: device, SessionID: string(rune('a' + i))}
		if err := client.InsertClick(ctx, click); err != nil {
			t.Fatalf("insert click: %v", err)
		}
	}
	stale := &postgres.AffiliateClick{LinkID: link.ID, PartnerID: partner.ID, Device: "tablet", CreatedAt: old}
	if err := client.InsertClick(ctx, stale); err != nil {
		t.Fatalf("insert stale click: %v", err)
	}

	since := now.AddDate(0, 0, -30)
	total, err := client.CountClicksSince(ctx, since)
	if err != nil || total != 3 {
		t.Fatalf("expected 3 recent clicks, got %d err=%v", total, err)
	}

	byDevice, err := client.ClicksByDeviceSince(ctx, since)
	if err != nil {
		t.Fatalf("by device: %v", err)
	}
	if byDevice["mobile"] != 2 || byDevice["desktop"] != 1 || byDevice["tablet"] != 0 {
		t.Errorf("unexpected device counts: %v", byDevice)
	}

	byPartner, err := client.ClicksByPartnerSince(ctx, since, []uuid.UUID{partner.ID})
	if err != nil || byPartner[partner.ID.String()] != 3 {
		t.Errorf("unexpected partner counts: %v err=%v", byPartner, err)
	}

	deleted, err := client.DeleteClicksBefore(ctx, now.AddDate(0, 0, -365))
	if err != nil || deleted != 1 {
		t.Fatalf("expected 1 deleted click, got %d err=%v", deleted, err)
	}
}

// go test -v --run TestConversionsSince
func TestConversionsSince(t *testing.T) {
	client := newSQLite(t)
	ctx := context.Background()
	partner := seedPartner(t, client, "High", "exchange", 10, true)

	for _, c := range []struct {
		status     string
		commission string
	}{
		{postgres.ConversionConfirmed, "12.50"},
		{postgres.ConversionPaid, "7.25"},
		{postgres.ConversionPending, "100"},
	} {
		conv := &postgres.AffiliateConversion{
			PartnerID:  partner.ID,
			Status:     c.status,
			Commission: decimal.RequireFromString(c.commission),
		}
		if err := client.InsertConversion(ctx, conv); err != nil {
			t.Fatalf("insert conversion: %v", err)
		}
	}

	convs, err := client.ConversionsSince(ctx, time.Now().UTC().AddDate(0, 0, -1), postgres.ConversionConfirmed, postgres.ConversionPaid)
	if err != nil {
		t.Fatalf("conversions: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("expected 2 counted conversions, got %d", len(convs))
	}
	sum := decimal.Zero
	for _, c := range convs {
		if c.Partner == nil || c.Partner.Category != "exchange" {
			t.Errorf("expected preloaded partner, got %+v", c.Partner)
		}
		sum = sum.Add(c.Commission)
	}
	if !sum.Equal(decimal.RequireFromString("19.75")) {
		t.Errorf("unexpected commission sum %s", sum)
	}
}

// go test -v --run TestContactSubmission
func TestContactSubmission(t *testing.T) {
	client := newSQLite(t)
	ctx := context.Background()

	s := &postgres.ContactSubmission{Name: "Ann", Email: "a@example.com", Message: "hi", FormType: "contact", Status: "new"}
	if err := client.InsertContactSubmission(ctx, s); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := client.ContactSubmissionsSince(ctx, time.Now().UTC().Add(-time.Hour))
	if err != nil || len(got) != 1 || got[0].ID != s.ID {
		t.Fatalf("unexpected submissions %+v err=%v", got, err)
	}
}
