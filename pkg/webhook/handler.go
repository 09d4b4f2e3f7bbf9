package webhook

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/tidwall/gjson"

	"payhook/pkg/core"
	"payhook/pkg/pipeline"
	"payhook/pkg/storage"
)

// HandlerOptions holds dependencies used to build the webhook handler. All
// collaborators are injected here; the handler keeps no process-wide state
// of its own.
type HandlerOptions struct {
	Router       *pipeline.Router
	Records      storage.RecordStore
	Rows         storage.RowSink
	SheetRange   string
	Rules        *core.RuleEngine
	Publisher    core.Publisher
	Logger       *log.Logger
	MaxBodyBytes int64
	DebugEvents  bool
}

// PayPalHandler handles incoming webhooks from PayPal.
type PayPalHandler struct {
	router      *pipeline.Router
	records     storage.RecordStore
	rows        storage.RowSink
	sheetRange  string
	rules       *core.RuleEngine
	publisher   core.Publisher
	logger      *log.Logger
	maxBody     int64
	debugEvents bool
}

// NewPayPalHandler creates a new PayPalHandler.
func NewPayPalHandler(opts HandlerOptions) *PayPalHandler {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	router := opts.Router
	if router == nil {
		router = pipeline.NewRouter(logger)
	}
	return &PayPalHandler{
		router:      router,
		records:     opts.Records,
		rows:        opts.Rows,
		sheetRange:  opts.SheetRange,
		rules:       opts.Rules,
		publisher:   opts.Publisher,
		logger:      logger,
		maxBody:     opts.MaxBodyBytes,
		debugEvents: opts.DebugEvents,
	}
}

// ServeHTTP handles an incoming HTTP request. Responses follow the webhook
// contract: 200 with {message} on success or an accepted-but-unrecognized
// event type, 400 with {error} on validation failure, 500 with {error} on
// anything else.
func (h *PayPalHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r, logger, reqID, rawBody, ok := prepareWebhookRequest(w, r, h.maxBody, h.logger)
	if !ok {
		return
	}

	eventType := gjson.GetBytes(rawBody, "event_type").String()
	if h.debugEvents {
		logDebugEvent(logger, eventType, rawBody)
	}

	if err := pipeline.Validate(r.Header.Get("Content-Type"), rawBody); err != nil {
		logger.Printf("webhook validation failed request_id=%s err=%v", reqID, err)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := h.router.Process(rawBody)
	if err != nil {
		var validationErr *pipeline.ValidationError
		if errors.As(err, &validationErr) {
			respondError(w, http.StatusBadRequest, validationErr.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}
	if !outcome.Handled {
		respondMessage(w, http.StatusOK, outcome.Reason)
		return
	}

	record := outcome.Record
	logger.Printf("event normalized request_id=%s event=%s record_id=%s data_type=%s", reqID, record.EventType, record.ID, record.DataType)
	if err := h.persist(r.Context(), logger, reqID, record); err != nil {
		respondError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}
	h.publish(r.Context(), logger, reqID, record, rawBody)

	respondMessage(w, http.StatusOK, fmt.Sprintf("Event type %s processed successfully.", record.EventType))
}

// persist writes the record to both sinks. The writes are independent and
// non-transactional: a row append is still attempted when the upsert fails,
// and the first failure is reported.
func (h *PayPalHandler) persist(ctx context.Context, logger *log.Logger, reqID string, record *pipeline.Record) error {
	var failed error
	if h.records != nil {
		err := h.records.UpsertRecord(ctx, storage.Record{
			ID:         record.ID,
			DataType:   record.DataType,
			Attributes: record.Fields,
		})
		if err != nil {
			logger.Printf("record upsert failed request_id=%s record_id=%s err=%v", reqID, record.ID, err)
			failed = err
		}
	}
	if h.rows != nil {
		err := h.rows.AppendRow(ctx, storage.Row{
			SheetRange: h.sheetRange,
			RecordID:   record.ID,
			DataType:   record.DataType,
			Values:     record.RowValues(),
		})
		if err != nil {
			logger.Printf("row append failed request_id=%s record_id=%s err=%v", reqID, record.ID, err)
			if failed == nil {
				failed = err
			}
		}
	}
	return failed
}

// publish forwards the normalized event to every matching rule topic.
// Publishing is best-effort; failures are logged, never surfaced to the
// webhook response.
func (h *PayPalHandler) publish(ctx context.Context, logger *log.Logger, reqID string, record *pipeline.Record, rawBody []byte) {
	if h.publisher == nil || h.rules == nil {
		return
	}
	_, data := rawObjectAndFlatten(rawBody)
	event := core.Event{
		Provider:   "paypal",
		Name:       record.EventType,
		RequestID:  reqID,
		RecordID:   record.ID,
		DataType:   record.DataType,
		Data:       data,
		RawPayload: rawBody,
	}
	matches := h.rules.Evaluate(event)
	for _, match := range matches {
		if err := h.publisher.Publish(ctx, match.Topic, event); err != nil {
			logger.Printf("publish %s failed request_id=%s err=%v", match.Topic, reqID, err)
			continue
		}
		logger.Printf("published topic=%s request_id=%s event=%s", match.Topic, reqID, record.EventType)
	}
}
