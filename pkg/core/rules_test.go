package core

import "testing"

func TestRuleEngineEvaluate(t *testing.T) {
	engine, err := NewRuleEngine([]Rule{
		{When: "event_type == 'PAYMENT.SALE.COMPLETED'", Emit: "payments.sale.completed"},
		{When: "event_type == 'BILLING.SUBSCRIPTION.CREATED'", Emit: "subscriptions.created"},
	}, nil)
	if err != nil {
		t.Fatalf("compile rules: %v", err)
	}

	matches := engine.Evaluate(Event{Data: map[string]interface{}{
		"event_type": "PAYMENT.SALE.COMPLETED",
	}})
	if len(matches) != 1 || matches[0].Topic != "payments.sale.completed" {
		t.Fatalf("unexpected matches %v", matches)
	}
}

func TestRuleEngineNestedField(t *testing.T) {
	engine, err := NewRuleEngine([]Rule{
		{When: "[resource.amount.currency] == 'USD'", Emit: "payments.usd"},
	}, nil)
	if err != nil {
		t.Fatalf("compile rules: %v", err)
	}

	matches := engine.Evaluate(Event{Data: map[string]interface{}{
		"event_type":               "PAYMENT.SALE.COMPLETED",
		"resource.amount.currency": "USD",
	}})
	if len(matches) != 1 || matches[0].Topic != "payments.usd" {
		t.Fatalf("unexpected matches %v", matches)
	}
}

func TestRuleEngineEvalErrorSkipsRule(t *testing.T) {
	engine, err := NewRuleEngine([]Rule{
		{When: "missing_field == 'x'", Emit: "never"},
		{When: "event_type == 'PAYMENT.SALE.COMPLETED'", Emit: "payments"},
	}, nil)
	if err != nil {
		t.Fatalf("compile rules: %v", err)
	}

	matches := engine.Evaluate(Event{Data: map[string]interface{}{
		"event_type": "PAYMENT.SALE.COMPLETED",
	}})
	if len(matches) != 1 || matches[0].Topic != "payments" {
		t.Fatalf("an erroring rule must be skipped, got %v", matches)
	}
}

func TestRuleEngineCompileError(t *testing.T) {
	if _, err := NewRuleEngine([]Rule{{When: "event_type ==", Emit: "x"}}, nil); err == nil {
		t.Fatalf("expected compile error for malformed expression")
	}
}

func TestRuleEngineNilReceiver(t *testing.T) {
	var engine *RuleEngine
	if matches := engine.Evaluate(Event{}); matches != nil {
		t.Fatalf("nil engine must match nothing, got %v", matches)
	}
}
