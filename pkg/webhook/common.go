package webhook

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"

	"payhook/pkg/core"
)

// rawObjectAndFlatten unmarshals a raw JSON byte slice into both an interface{}
// and a flattened map[string]interface{}. This is useful for both preserving the
// original structure and for easy access to nested fields.
func rawObjectAndFlatten(raw []byte) (interface{}, map[string]interface{}) {
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, map[string]interface{}{}
	}
	objectMap, ok := out.(map[string]interface{})
	if !ok {
		return out, map[string]interface{}{}
	}
	return out, core.Flatten(objectMap)
}

func requestID(r *http.Request) string {
	if r == nil {
		return uuid.NewString()
	}
	if id := r.Header.Get("X-Request-Id"); id != "" {
		return id
	}
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	if id := r.Header.Get("X-Correlation-Id"); id != "" {
		return id
	}
	return uuid.NewString()
}

// prepareWebhookRequest enforces the method and body size limit, reads the
// body, and rewinds it. The caller must stop when ok is false; the response
// has already been written.
func prepareWebhookRequest(w http.ResponseWriter, r *http.Request, maxBody int64, logger *log.Logger) (*http.Request, *log.Logger, string, []byte, bool) {
	if logger == nil {
		logger = log.Default()
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return r, logger, "", nil, false
	}
	reqID := requestID(r)
	body := r.Body
	if maxBody > 0 {
		body = http.MaxBytesReader(w, r.Body, maxBody)
	}
	rawBody, err := io.ReadAll(body)
	if err != nil {
		logger.Printf("read body failed request_id=%s err=%v", reqID, err)
		respondError(w, http.StatusBadRequest, "unable to read request body")
		return r, logger, reqID, nil, false
	}
	r.Body = io.NopCloser(bytes.NewReader(rawBody))
	return r, logger, reqID, rawBody, true
}

func logDebugEvent(logger *log.Logger, eventType string, body []byte) {
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("debug event provider=paypal name=%s payload=%s", eventType, string(body))
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
