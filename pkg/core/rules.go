package core

import (
	"log"

	"github.com/Knetic/govaluate"
)

// Rule forwards events matching a boolean expression to a topic.
type Rule struct {
	When string `yaml:"when"`
	Emit string `yaml:"emit"`
}

type compiledRule struct {
	emit string
	expr *govaluate.EvaluableExpression
}

// RuleEngine evaluates forward rules against flattened event payloads.
type RuleEngine struct {
	rules  []compiledRule
	logger *log.Logger
}

// RuleMatch names a topic an event should be published to.
type RuleMatch struct {
	Topic string
}

// NewRuleEngine compiles forward rules. Expressions are evaluated with the
// flattened payload as parameters, so `event_type == 'PAYMENT.SALE.COMPLETED'`
// and `[resource.amount.currency] == 'USD'` both work (dotted names need the
// bracket escape).
func NewRuleEngine(rules []Rule, logger *log.Logger) (*RuleEngine, error) {
	if logger == nil {
		logger = log.Default()
	}
	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		expr, err := govaluate.NewEvaluableExpression(rule.When)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledRule{emit: rule.Emit, expr: expr})
	}
	return &RuleEngine{rules: compiled, logger: logger}, nil
}

// Evaluate returns the topics whose rules match the event. A rule whose
// expression errors (e.g. references an absent field) is skipped, not fatal.
func (r *RuleEngine) Evaluate(event Event) []RuleMatch {
	if r == nil || len(r.rules) == 0 {
		return nil
	}

	matches := make([]RuleMatch, 0, 1)
	for _, rule := range r.rules {
		result, err := rule.expr.Evaluate(event.Data)
		if err != nil {
			r.logger.Printf("rule eval failed: %v", err)
			continue
		}
		ok, _ := result.(bool)
		if ok {
			matches = append(matches, RuleMatch{Topic: rule.emit})
		}
	}
	return matches
}
