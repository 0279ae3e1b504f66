// Package event models the lifecycle event passed to every hook.
//
// Decoding keeps the raw JSON of every top-level and response key so that an
// encoded event carries everything the identity platform sent, with only the
// response fields a hook set overwritten.
package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"maps"
	"strings"

	"github.com/wiseuni/identity-hooks/internal/hookerr"
)

// Response keys a hook may write.
const (
	keyAutoConfirmUser = "autoConfirmUser"
	keyAutoVerifyEmail = "autoVerifyEmail"
	keyEmailSubject    = "emailSubject"
	keyEmailMessage    = "emailMessage"
)

// Attribute names read from request.userAttributes.
const (
	AttrEmail = "email"
	AttrName  = "name"
	AttrSub   = "sub"
)

// Event is one lifecycle invocation.
type Event struct {
	TriggerSource string
	UserName      string
	// Request is nil when the event carried no request section.
	Request  *Request
	Response Response

	raw         map[string]json.RawMessage
	rawResponse map[string]json.RawMessage
}

// Request holds the read-only inputs.
type Request struct {
	// UserAttributes is nil when the request carried no userAttributes section.
	UserAttributes map[string]string
	CodeParameter  string
	// HasCode reports whether codeParameter was present and non-null.
	HasCode bool
}

// Response holds the fields a hook may set. Nil means "not set by this hook".
type Response struct {
	AutoConfirmUser *bool
	AutoVerifyEmail *bool
	EmailSubject    *string
	EmailMessage    *string
}

type wireRequest struct {
	UserAttributes map[string]json.RawMessage `json:"userAttributes"`
	CodeParameter  *string                    `json:"codeParameter"`
}

// Decode parses a payload. Any failure is a MalformedEventError.
func Decode(payload []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		var he *hookerr.Error
		if errors.As(err, &he) {
			return nil, he
		}
		return nil, &hookerr.Error{Kind: hookerr.KindMalformedEvent, Reason: "event is not valid JSON", Err: err}
	}
	return &ev, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return hookerr.MalformedEvent("event must be a JSON object")
	}

	out := Event{raw: raw}
	if err := decodeString(raw, "triggerSource", &out.TriggerSource); err != nil {
		return err
	}
	if err := decodeString(raw, "userName", &out.UserName); err != nil {
		return err
	}

	if v, ok := raw["request"]; ok && !isNull(v) {
		var wr wireRequest
		if err := json.Unmarshal(v, &wr); err != nil {
			return &hookerr.Error{Kind: hookerr.KindMalformedEvent, Reason: "request section is not an object", Err: err}
		}
		req := &Request{}
		if wr.UserAttributes != nil {
			req.UserAttributes = make(map[string]string, len(wr.UserAttributes))
			for k, v := range wr.UserAttributes {
				req.UserAttributes[k] = attributeText(v)
			}
		}
		if wr.CodeParameter != nil {
			req.CodeParameter = *wr.CodeParameter
			req.HasCode = true
		}
		out.Request = req
	}

	if v, ok := raw["response"]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &out.rawResponse); err != nil {
			return &hookerr.Error{Kind: hookerr.KindMalformedEvent, Reason: "response section is not an object", Err: err}
		}
	}

	*e = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (e Event) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(e.raw)+4)
	maps.Copy(out, e.raw)

	// Events built in code have no raw form for their inputs.
	if _, ok := out["triggerSource"]; !ok && e.TriggerSource != "" {
		b, _ := json.Marshal(e.TriggerSource)
		out["triggerSource"] = b
	}
	if _, ok := out["userName"]; !ok && e.UserName != "" {
		b, _ := json.Marshal(e.UserName)
		out["userName"] = b
	}
	if _, ok := out["request"]; !ok && e.Request != nil {
		b, err := json.Marshal(e.Request.wire())
		if err != nil {
			return nil, err
		}
		out["request"] = b
	}

	resp, err := e.encodeResponse()
	if err != nil {
		return nil, err
	}
	out["response"] = resp

	return json.Marshal(out)
}

func (e Event) encodeResponse() (json.RawMessage, error) {
	resp := make(map[string]json.RawMessage, len(e.rawResponse)+4)
	maps.Copy(resp, e.rawResponse)

	set := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		resp[key] = b
		return nil
	}
	if e.Response.AutoConfirmUser != nil {
		if err := set(keyAutoConfirmUser, *e.Response.AutoConfirmUser); err != nil {
			return nil, err
		}
	}
	if e.Response.AutoVerifyEmail != nil {
		if err := set(keyAutoVerifyEmail, *e.Response.AutoVerifyEmail); err != nil {
			return nil, err
		}
	}
	if e.Response.EmailSubject != nil {
		if err := set(keyEmailSubject, *e.Response.EmailSubject); err != nil {
			return nil, err
		}
	}
	if e.Response.EmailMessage != nil {
		if err := set(keyEmailMessage, *e.Response.EmailMessage); err != nil {
			return nil, err
		}
	}
	return json.Marshal(resp)
}

func (r *Request) wire() map[string]any {
	w := map[string]any{}
	if r.UserAttributes != nil {
		w["userAttributes"] = r.UserAttributes
	}
	if r.HasCode {
		w["codeParameter"] = r.CodeParameter
	}
	return w
}

// Trigger returns the parsed trigger source.
func (e *Event) Trigger() Trigger {
	return ParseTrigger(e.TriggerSource)
}

// Attribute returns a user attribute and whether it was present.
func (e *Event) Attribute(name string) (string, bool) {
	if e.Request == nil || e.Request.UserAttributes == nil {
		return "", false
	}
	v, ok := e.Request.UserAttributes[name]
	return v, ok
}

// AttributeOr returns a user attribute, or fallback when it is absent or blank.
func (e *Event) AttributeOr(name, fallback string) string {
	if v, ok := e.Attribute(name); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

// Email returns request.userAttributes.email, failing with a
// MalformedEventError when any level of that path is missing.
func (e *Event) Email() (string, error) {
	if e.Request == nil {
		return "", hookerr.MalformedEvent("event has no request section")
	}
	if e.Request.UserAttributes == nil {
		return "", hookerr.MalformedEvent("request has no userAttributes section")
	}
	email, ok := e.Request.UserAttributes[AttrEmail]
	if !ok {
		return "", hookerr.MalformedEvent("userAttributes has no email")
	}
	return email, nil
}

// Clone returns a deep copy.
func (e *Event) Clone() *Event {
	c := &Event{
		TriggerSource: e.TriggerSource,
		UserName:      e.UserName,
		raw:           maps.Clone(e.raw),
		rawResponse:   maps.Clone(e.rawResponse),
		Response: Response{
			AutoConfirmUser: clonePtr(e.Response.AutoConfirmUser),
			AutoVerifyEmail: clonePtr(e.Response.AutoVerifyEmail),
			EmailSubject:    clonePtr(e.Response.EmailSubject),
			EmailMessage:    clonePtr(e.Response.EmailMessage),
		},
	}
	if e.Request != nil {
		c.Request = &Request{
			UserAttributes: maps.Clone(e.Request.UserAttributes),
			CodeParameter:  e.Request.CodeParameter,
			HasCode:        e.Request.HasCode,
		}
	}
	return c
}

// SetAutoConfirm sets both autoConfirmUser and autoVerifyEmail.
func (r *Response) SetAutoConfirm(v bool) {
	r.AutoConfirmUser = &v
	r.AutoVerifyEmail = &v
}

// SetEmail sets the custom subject and message.
func (r *Response) SetEmail(subject, message string) {
	r.EmailSubject = &subject
	r.EmailMessage = &message
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func decodeString(raw map[string]json.RawMessage, key string, dst *string) error {
	v, ok := raw[key]
	if !ok || isNull(v) {
		return nil
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return &hookerr.Error{Kind: hookerr.KindMalformedEvent, Reason: key + " must be a string", Err: err}
	}
	return nil
}

// attributeText renders an attribute value. Strings are unquoted; anything
// else keeps its JSON text.
func attributeText(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	if isNull(v) {
		return ""
	}
	return string(bytes.TrimSpace(v))
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
