package core

import (
	"reflect"
	"testing"
	"time"
)

func TestCustomerPayloadToUpsertInput(t *testing.T) {
	payload := CustomerPayload{
		ID:               9001,
		Email:            " buyer@example.com ",
		FirstName:        " Ada ",
		LastName:         " Byron ",
		AcceptsMarketing: true,
		TotalSpent:       "149.90",
		OrdersCount:      4,
		Tags:             "vip, wholesale",
		CreatedAt:        "2026-08-20T10:00:00Z",
	}

	in := payload.ToUpsertInput()
	if in.ShopifyCustomerID != "9001" {
		t.Fatalf("expected string shopify id, got %q", in.ShopifyCustomerID)
	}
	if in.Email != "buyer@example.com" {
		t.Fatalf("expected trimmed email, got %q", in.Email)
	}
	if in.TotalSpent != 149.90 {
		t.Fatalf("expected parsed total spent, got %v", in.TotalSpent)
	}
	if !reflect.DeepEqual(in.Tags, []string{"vip", "wholesale"}) {
		t.Fatalf("expected split tags, got %#v", in.Tags)
	}
	if in.CreatedAt.IsZero() {
		t.Fatalf("expected parsed created_at")
	}
	if got := payload.FullName(); got != "Ada Byron" {
		t.Fatalf("expected full name, got %q", got)
	}
}

func TestOrderPayloadToUpsertInputCarriesCustomerName(t *testing.T) {
	payload := OrderPayload{
		ID:              12345,
		Name:            "#1001",
		Email:           "buyer@example.com",
		TotalPrice:      "99.50",
		Currency:        "USD",
		FinancialStatus: "paid",
		Customer:        &CustomerPayload{FirstName: "Ada", LastName: "Byron"},
	}

	in := payload.ToUpsertInput("cust-1")
	if in.ShopifyOrderID != "12345" {
		t.Fatalf("expected shopify order id, got %q", in.ShopifyOrderID)
	}
	if in.CustomerID != "cust-1" {
		t.Fatalf("expected linked customer id, got %q", in.CustomerID)
	}
	if in.CustomerName != "Ada Byron" {
		t.Fatalf("expected customer name from embedded payload, got %q", in.CustomerName)
	}
	if in.TotalPrice != 99.50 {
		t.Fatalf("expected parsed total price, got %v", in.TotalPrice)
	}
}

func TestSplitTags(t *testing.T) {
	if got := SplitTags(" a, ,b ,"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("expected empty segments dropped, got %#v", got)
	}
	if got := SplitTags("  "); got != nil {
		t.Fatalf("expected nil for blank tags, got %#v", got)
	}
}

func TestParseMoneyToleratesBadInput(t *testing.T) {
	if got := ParseMoney("12.34"); got != 12.34 {
		t.Fatalf("expected parsed amount, got %v", got)
	}
	if got := ParseMoney("not-a-number"); got != 0 {
		t.Fatalf("expected zero for malformed amount, got %v", got)
	}
	if got := ParseMoney(""); got != 0 {
		t.Fatalf("expected zero for empty amount, got %v", got)
	}
}

func TestParseShopifyTime(t *testing.T) {
	parsed := ParseShopifyTime("2026-08-20T10:00:00-04:00")
	want := time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC)
	if !parsed.Equal(want) {
		t.Fatalf("expected %s, got %s", want, parsed)
	}

	fallback := ParseShopifyTime("garbage")
	if time.Since(fallback) > time.Minute {
		t.Fatalf("expected near-now fallback, got %s", fallback)
	}
}

func TestJobStatusIsTerminal(t *testing.T) {
	terminal := []JobStatus{JobStatusCompleted, JobStatusDeadLetter}
	for _, status := range terminal {
		if !status.IsTerminal() {
			t.Fatalf("expected %s to be terminal", status)
		}
	}
	active := []JobStatus{JobStatusPending, JobStatusProcessing, JobStatusFailed}
	for _, status := range active {
		if status.IsTerminal() {
			t.Fatalf("expected %s to be non-terminal", status)
		}
	}
}
