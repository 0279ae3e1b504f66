package dispatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/wiseuni/identity-hooks/internal/event"
	"github.com/wiseuni/identity-hooks/internal/hookerr"
)

// MaxBodyBytes caps the size of an event posted over HTTP.
const MaxBodyBytes = 1 << 20

// ErrorBody is the JSON body returned when a hook rejects an event.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a rejection.
type ErrorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Handler serves POST requests for the named hook.
func (d *Dispatcher) Handler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := readBody(w, r)
		if !ok {
			return
		}
		out, err := d.InvokeRaw(r.Context(), name, payload)
		respond(w, out, err)
	}
}

// TriggerHandler serves POST requests routed by the event's triggerSource.
func (d *Dispatcher) TriggerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := readBody(w, r)
		if !ok {
			return
		}
		out, err := d.InvokeTrigger(r.Context(), payload)
		respond(w, out, err)
	}
}

// SuppressingRequest returns a predicate matching requests bound for a hook
// registered with PolicySuppress. paths maps dedicated routes to hook names.
// Requests on triggerPath are matched by the triggerSource of their body,
// which is restored for the next handler.
func (d *Dispatcher) SuppressingRequest(triggerPath string, paths map[string]string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		if name, ok := paths[r.URL.Path]; ok {
			return d.Suppresses(name)
		}
		if r.URL.Path != triggerPath || r.Body == nil {
			return false
		}

		payload, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
		r.Body = io.NopCloser(bytes.NewReader(payload))
		if err != nil {
			return false
		}
		var head struct {
			TriggerSource string `json:"triggerSource"`
		}
		if json.Unmarshal(payload, &head) != nil || head.TriggerSource == "" {
			return false
		}
		return d.Suppresses(event.HookName(head.TriggerSource))
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, hookerr.KindMalformedEvent, "event body too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, hookerr.KindMalformedEvent, "failed to read event body")
		return nil, false
	}
	return payload, true
}

func respond(w http.ResponseWriter, out []byte, err error) {
	if err != nil {
		kind := hookerr.KindOf(err)
		message := err.Error()
		if kind == hookerr.KindUnknown {
			message = "internal error"
		}
		writeError(w, kind.HTTPStatus(), kind, message)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func writeError(w http.ResponseWriter, status int, kind hookerr.Kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorBody{Error: ErrorDetail{Kind: kind.String(), Message: message}})
}
