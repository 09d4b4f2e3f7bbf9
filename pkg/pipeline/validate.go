package pipeline

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ContentTypeJSON is the only content type accepted on the webhook endpoint.
const ContentTypeJSON = "application/json"

// ValidationError marks a client-caused failure. The webhook handler maps it
// to HTTP 400; everything else maps to 500.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the declared content type and the presence of the required
// top-level fields before the router runs. For PAYMENT.SALE.COMPLETED it also
// requires resource.amount.total and resource.amount.currency, since those
// feed the monetary derivation. Pure predicate, no side effects.
func Validate(contentType string, body []byte) error {
	mediaType := contentType
	if idx := strings.Index(mediaType, ";"); idx >= 0 {
		mediaType = mediaType[:idx]
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if mediaType != ContentTypeJSON {
		return validationErrorf("invalid Content-Type. Expected '%s'", ContentTypeJSON)
	}

	if !gjson.ValidBytes(body) {
		return validationErrorf("request body is not valid JSON")
	}
	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return validationErrorf("request body must be a JSON object")
	}
	for _, field := range []string{"event_type", "resource"} {
		if !parsed.Get(field).Exists() {
			return validationErrorf("missing required field: %s", field)
		}
	}

	if parsed.Get("event_type").String() == EventPaymentSaleCompleted {
		for _, path := range []string{"resource.amount.total", "resource.amount.currency"} {
			if !present(parsed.Get(path)) {
				return validationErrorf("malformed resource: missing %s", strings.TrimPrefix(path, "resource."))
			}
		}
	}
	return nil
}

// present reports whether a gjson value exists and is not JSON null.
func present(value gjson.Result) bool {
	return value.Exists() && value.Type != gjson.Null
}
