package pipeline

import (
	"fmt"
	"log"

	"github.com/tidwall/gjson"
)

// Recognized event type discriminators. Matching is exact; there is no
// pattern matching or versioning.
const (
	EventSubscriptionCreated  = "BILLING.SUBSCRIPTION.CREATED"
	EventPaymentSaleCompleted = "PAYMENT.SALE.COMPLETED"
	EventOrderApproved        = "CHECKOUT.ORDER.APPROVED"
)

// Outcome is the tagged result of routing one event. Exactly one of the
// three arms applies: Handled carries a record, Skipped carries a reason,
// and a non-nil error from Process is the failed arm.
type Outcome struct {
	Handled bool
	Reason  string
	Record  *Record
}

// Router classifies a validated payload by event_type and runs the matching
// normalization pipeline.
type Router struct {
	logger *log.Logger
}

// NewRouter returns a router logging to the given logger.
func NewRouter(logger *log.Logger) *Router {
	if logger == nil {
		logger = log.Default()
	}
	return &Router{logger: logger}
}

// Process normalizes one validated webhook body. An unrecognized event type
// is a successful no-op, not an error. A handler failure is logged and
// re-raised; no record is produced for that event.
func (r *Router) Process(body []byte) (Outcome, error) {
	parsed := gjson.ParseBytes(body)
	eventType := parsed.Get("event_type").String()
	resource := parsed.Get("resource")

	var (
		record *Record
		err    error
	)
	switch eventType {
	case EventSubscriptionCreated:
		record, err = r.subscriptionCreated(resource)
	case EventPaymentSaleCompleted:
		record, err = r.paymentSaleCompleted(resource)
	case EventOrderApproved:
		record, err = r.orderApproved(resource)
	default:
		r.logger.Printf("unhandled event type: %s", eventType)
		return Outcome{Reason: fmt.Sprintf("Event type %s not processed.", eventType)}, nil
	}
	if err != nil {
		r.logger.Printf("process %s failed: %v", eventType, err)
		return Outcome{}, err
	}
	return Outcome{Handled: true, Record: record}, nil
}

func (r *Router) subscriptionCreated(resource gjson.Result) (*Record, error) {
	fields, err := ExtractFields(resource, subscriptionFields)
	if err != nil {
		return nil, err
	}
	meta := r.decodeTag(resource.Get("custom_id").String())

	return &Record{
		ID:        fields["id"],
		DataType:  DataTypeSubscription,
		EventType: EventSubscriptionCreated,
		Fields: map[string]string{
			"user_name":   meta.UserName,
			"purpose":     meta.Purpose,
			"user_email":  meta.UserEmail,
			"create_time": fields["create_time"],
		},
	}, nil
}

func (r *Router) paymentSaleCompleted(resource gjson.Result) (*Record, error) {
	fields, err := ExtractFields(resource, paymentFields)
	if err != nil {
		return nil, err
	}
	netAmount, err := NetAmount(fields["amount_value"], fields["transaction_fee"])
	if err != nil {
		return nil, err
	}
	meta := r.decodeTag(resource.Get("custom").String())

	return &Record{
		ID:        fields["billing_agreement_id"],
		DataType:  DataTypePayment,
		EventType: EventPaymentSaleCompleted,
		Fields: map[string]string{
			"purpose":         meta.Purpose,
			"user_name":       meta.UserName,
			"user_email":      meta.UserEmail,
			"amount_value":    fields["amount_value"],
			"amount_currency": fields["amount_currency"],
			"transaction_fee": fields["transaction_fee"],
			"net_amount":      netAmount,
			"create_time":     fields["create_time"],
		},
	}, nil
}

func (r *Router) orderApproved(resource gjson.Result) (*Record, error) {
	units := resource.Get("purchase_units")
	if !units.IsArray() || len(units.Array()) == 0 {
		return nil, validationErrorf("missing purchase_units in resource")
	}

	fields, err := ExtractFields(resource, orderFields)
	if err != nil {
		return nil, err
	}
	meta := r.decodeTag(resource.Get("purchase_units.0.custom_id").String())

	return &Record{
		ID:        fields["id"],
		DataType:  DataTypePayment,
		EventType: EventOrderApproved,
		Fields: map[string]string{
			"purpose":         meta.Purpose,
			"user_name":       meta.UserName,
			"payer_name":      ComposeName(fields["given_name"], fields["surname"]),
			"user_email":      meta.UserEmail,
			"payer_email":     fields["payer_email"],
			"amount_value":    fields["amount_value"],
			"amount_currency": fields["amount_currency"],
			"transaction_fee": fields["transaction_fee"],
			"net_amount":      fields["net_amount"],
			"create_time":     fields["create_time"],
		},
	}, nil
}

// decodeTag decodes a custom tag and logs skipped segments as non-fatal
// diagnostics.
func (r *Router) decodeTag(tag string) Metadata {
	meta, skipped := MetadataFromTag(tag)
	for _, segment := range skipped {
		r.logger.Printf("skipping invalid segment %q: expected format key:value", segment)
	}
	return meta
}
