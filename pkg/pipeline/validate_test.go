package pipeline

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateContentType(t *testing.T) {
	body := []byte(`{"event_type":"X","resource":{}}`)

	if err := Validate("application/json", body); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if err := Validate("application/json; charset=utf-8", body); err != nil {
		t.Fatalf("expected charset parameter accepted, got %v", err)
	}
	err := Validate("text/plain", body)
	if err == nil {
		t.Fatalf("expected content type rejection")
	}
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

func TestValidateMissingFields(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"resource":{}}`, "event_type"},
		{`{"event_type":"X"}`, "resource"},
	}
	for _, tc := range cases {
		err := Validate("application/json", []byte(tc.body))
		if err == nil {
			t.Fatalf("body %s: expected error", tc.body)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("body %s: expected %q in error, got %v", tc.body, tc.want, err)
		}
	}
}

func TestValidateRejectsNonObjectBody(t *testing.T) {
	if err := Validate("application/json", []byte(`not json`)); err == nil {
		t.Fatalf("expected invalid JSON rejection")
	}
	if err := Validate("application/json", []byte(`[1,2]`)); err == nil {
		t.Fatalf("expected non-object rejection")
	}
}

func TestValidatePaymentSaleAmountRequired(t *testing.T) {
	missingCurrency := []byte(`{
		"event_type": "PAYMENT.SALE.COMPLETED",
		"resource": {"amount": {"total": "50.00"}}
	}`)
	err := Validate("application/json", missingCurrency)
	if err == nil {
		t.Fatalf("expected malformed resource error")
	}
	if !strings.Contains(err.Error(), "amount.currency") {
		t.Fatalf("expected amount.currency in error, got %v", err)
	}

	missingTotal := []byte(`{
		"event_type": "PAYMENT.SALE.COMPLETED",
		"resource": {"amount": {"currency": "USD"}}
	}`)
	if err := Validate("application/json", missingTotal); err == nil {
		t.Fatalf("expected malformed resource error for missing total")
	}

	complete := []byte(`{
		"event_type": "PAYMENT.SALE.COMPLETED",
		"resource": {"amount": {"total": "50.00", "currency": "USD"}}
	}`)
	if err := Validate("application/json", complete); err != nil {
		t.Fatalf("expected valid payment body, got %v", err)
	}
}

func TestValidateAmountCheckOnlyAppliesToPaymentSale(t *testing.T) {
	body := []byte(`{"event_type":"BILLING.SUBSCRIPTION.CREATED","resource":{}}`)
	if err := Validate("application/json", body); err != nil {
		t.Fatalf("subscription body must not require amount, got %v", err)
	}
}
