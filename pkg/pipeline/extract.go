package pipeline

import (
	"strings"

	"github.com/tidwall/gjson"
)

// FieldSpec declares one projected field of an event resource: where it
// lives, what it falls back to, and whether its absence is a hard failure.
type FieldSpec struct {
	Name     string
	Path     string
	Default  string
	Required bool
}

// Projection tables, one per recognized event shape. Centralizing the
// required-vs-optional policy here keeps the handlers free of ad-hoc
// defaulted lookups.
var (
	subscriptionFields = []FieldSpec{
		{Name: "id", Path: "id", Default: UnknownID},
		{Name: "create_time", Path: "create_time", Default: UnknownTime},
	}

	paymentFields = []FieldSpec{
		{Name: "billing_agreement_id", Path: "billing_agreement_id", Default: UnknownID},
		{Name: "amount_value", Path: "amount.total", Required: true},
		{Name: "amount_currency", Path: "amount.currency", Required: true},
		{Name: "transaction_fee", Path: "transaction_fee.value", Default: "0.00"},
		{Name: "create_time", Path: "create_time", Default: UnknownTime},
	}

	// Order extraction reads only the first purchase unit and the first
	// capture; multiple units/captures are ignored by the single-purchase
	// assumption. The empty purchase_units case is rejected before this
	// table is applied.
	orderFields = []FieldSpec{
		{Name: "id", Path: "id", Default: UnknownID},
		{Name: "amount_value", Path: "purchase_units.0.amount.value", Default: "0.00"},
		{Name: "amount_currency", Path: "purchase_units.0.amount.currency_code", Default: "USD"},
		{Name: "payer_email", Path: "payer.email_address", Default: UnknownEmail},
		{Name: "given_name", Path: "payer.name.given_name", Default: UnknownName},
		{Name: "surname", Path: "payer.name.surname", Default: UnknownSurname},
		{Name: "transaction_fee", Path: "purchase_units.0.payments.captures.0.seller_receivable_breakdown.paypal_fee.value", Default: "0.00"},
		{Name: "net_amount", Path: "purchase_units.0.payments.captures.0.seller_receivable_breakdown.net_amount.value", Default: "0.00"},
		{Name: "create_time", Path: "create_time", Default: UnknownTime},
	}
)

// ExtractFields projects the declared fields out of a resource. Optional
// fields fall back to their defaults; a required field that is absent or
// null fails the extraction with a ValidationError.
func ExtractFields(resource gjson.Result, specs []FieldSpec) (map[string]string, error) {
	out := make(map[string]string, len(specs))
	for _, spec := range specs {
		value := resource.Get(spec.Path)
		if !present(value) {
			if spec.Required {
				return nil, validationErrorf("missing required field: %s", spec.Path)
			}
			out[spec.Name] = spec.Default
			continue
		}
		out[spec.Name] = value.String()
	}
	return out, nil
}

// ComposeName joins a given name and surname with a single space and trims.
// Absent parts arrive here already replaced by sentinel words, never empty.
func ComposeName(givenName, surname string) string {
	return strings.TrimSpace(givenName + " " + surname)
}
