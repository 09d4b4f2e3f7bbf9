package pipeline

// Data types a normalized record is tagged with.
const (
	DataTypeSubscription = "subscription"
	DataTypePayment      = "payment"
)

// Record is the flat, sink-ready representation of a webhook event after
// extraction and defaulting. ID is never empty; absent source identifiers
// degrade to the Unknown_ID sentinel instead.
type Record struct {
	ID        string
	DataType  string
	EventType string
	Fields    map[string]string
}

// rowColumns declares the ordered tabular projection per event shape. The
// identifier is always the first column; it is not repeated here.
var rowColumns = map[string][]string{
	EventSubscriptionCreated:  {"purpose", "user_name", "user_email", "create_time"},
	EventPaymentSaleCompleted: {"purpose", "user_name", "user_email", "amount_value", "amount_currency", "transaction_fee", "net_amount", "create_time"},
	EventOrderApproved:        {"purpose", "payer_name", "user_email", "amount_value", "amount_currency", "create_time"},
}

// RowValues returns the ordered scalar values appended to the tabular sink
// for this record. Column order is significant and must match the declared
// schema per event shape.
func (r *Record) RowValues() []string {
	columns := rowColumns[r.EventType]
	values := make([]string, 0, len(columns)+1)
	values = append(values, r.ID)
	for _, column := range columns {
		values = append(values, r.Fields[column])
	}
	return values
}
