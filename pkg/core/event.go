package core

// Event is the envelope handed to rule evaluation and publishing for a
// normalized webhook event.
type Event struct {
	// Provider is the webhook source, always "paypal" for now.
	Provider string
	// Name is the provider event type discriminator.
	Name      string
	RequestID string
	// RecordID is the identifier the normalized record was persisted under.
	RecordID string
	// DataType is "subscription" or "payment".
	DataType string
	// Data is the flattened payload used for rule evaluation.
	Data map[string]interface{}
	// RawPayload is the original webhook body.
	RawPayload []byte
}
