package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/centsible/centsible-go/internal/domain"

	"go.uber.org/zap"
)

// The backend wraps payloads in one of three envelope shapes:
//
//	tagged:    {success, message?, data, errors?}
//	array:     [...]
//	paginated: {data: [...], page, limit, totalCount, ...}
//
// DecodeEnvelope resolves any of them into one tagged union so callers never
// branch on raw shapes. Feeding the same logical payload through any shape
// yields the same normalized result.

// EnvelopeKind discriminates the decoded union.
type EnvelopeKind int

const (
	KindUnknown EnvelopeKind = iota
	KindTagged
	KindArray
	KindPaginated
)

// Envelope is the normalized response envelope.
type Envelope struct {
	Kind    EnvelopeKind
	Success bool
	Message string
	Data    json.RawMessage
	Errors  json.RawMessage
	Page    *domain.Page
}

// envelopeProbe sniffs an object-shaped response.
type envelopeProbe struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`

	Page       *int  `json:"page"`
	Limit      *int  `json:"limit"`
	TotalCount *int  `json:"totalCount"`
	TotalPages *int  `json:"totalPages"`
	HasNext    *bool `json:"hasNextPage"`
	HasPrev    *bool `json:"hasPreviousPage"`
}

// DecodeEnvelope classifies a raw 2xx body. Invalid JSON is an error;
// valid JSON that matches no known shape comes back as KindUnknown so the
// caller picks the strict or tolerant fallback.
func DecodeEnvelope(raw json.RawMessage) (*Envelope, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return &Envelope{Kind: KindUnknown}, nil
	}

	if trimmed[0] == '[' {
		if !json.Valid(trimmed) {
			return nil, fmt.Errorf("gateway: invalid JSON array response")
		}
		return &Envelope{Kind: KindArray, Success: true, Data: trimmed}, nil
	}

	var probe envelopeProbe
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, fmt.Errorf("gateway: decode envelope: %w", err)
	}

	switch {
	case probe.Success != nil:
		return &Envelope{
			Kind:    KindTagged,
			Success: *probe.Success,
			Message: probe.Message,
			Data:    probe.Data,
			Errors:  probe.Errors,
		}, nil

	case probe.Data != nil && (probe.TotalCount != nil || probe.Page != nil):
		page := &domain.Page{}
		if probe.Page != nil {
			page.Page = *probe.Page
		}
		if probe.Limit != nil {
			page.Limit = *probe.Limit
		}
		if probe.TotalCount != nil {
			page.TotalCount = *probe.TotalCount
		}
		if probe.TotalPages != nil {
			page.TotalPages = *probe.TotalPages
		}
		if probe.HasNext != nil {
			page.HasNextPage = *probe.HasNext
		}
		if probe.HasPrev != nil {
			page.HasPreviousPage = *probe.HasPrev
		}
		return &Envelope{Kind: KindPaginated, Success: true, Data: probe.Data, Page: page}, nil
	}

	return &Envelope{Kind: KindUnknown, Data: trimmed}, nil
}

func isJSONNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// UnwrapObject decodes a success-flagged single-object response. A
// success=false flag or missing data is a *domain.DomainError carrying the
// envelope's own message — transport succeeded, the operation did not.
// Single-object lookups never degrade silently.
func UnwrapObject[T any](raw json.RawMessage, op string) (T, error) {
	var zero T

	env, err := DecodeEnvelope(raw)
	if err != nil {
		return zero, err
	}
	if env.Kind != KindTagged {
		return zero, &domain.DomainError{Op: op, Message: "unexpected response shape"}
	}
	if !env.Success || isJSONNull(env.Data) {
		return zero, &domain.DomainError{Op: op, Message: envelopeMessage(env)}
	}

	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return zero, fmt.Errorf("gateway: %s: decode data: %w", op, err)
	}
	return out, nil
}

// UnwrapNullable is UnwrapObject for endpoints where a null data field is a
// legitimate "nothing found" answer rather than a failure.
func UnwrapNullable[T any](raw json.RawMessage, op string) (*T, error) {
	env, err := DecodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	if env.Kind != KindTagged {
		return nil, &domain.DomainError{Op: op, Message: "unexpected response shape"}
	}
	if !env.Success {
		return nil, &domain.DomainError{Op: op, Message: envelopeMessage(env)}
	}
	if isJSONNull(env.Data) {
		return nil, nil
	}

	out := new(T)
	if err := json.Unmarshal(env.Data, out); err != nil {
		return nil, fmt.Errorf("gateway: %s: decode data: %w", op, err)
	}
	return out, nil
}

// UnwrapCollection decodes a list response from any known shape: a bare
// array, a tagged envelope's data array, or the nested array of a paginated
// envelope (including one nested inside a tagged envelope's data field).
// Collections degrade gracefully: an unrecognized shape yields an empty slice
// and a diagnostic log, never an error.
func UnwrapCollection[T any](raw json.RawMessage, logger *zap.Logger, op string) []T {
	env, err := DecodeEnvelope(raw)
	if err != nil {
		logger.Warn("gateway: malformed collection response",
			zap.String("operation", op),
			zap.Error(err),
		)
		return []T{}
	}

	items, ok := collectionItems(env.Data)
	if !ok {
		logger.Warn("gateway: unexpected collection shape, defaulting to empty",
			zap.String("operation", op),
			zap.Int("kind", int(env.Kind)),
		)
		return []T{}
	}

	var out []T
	if err := json.Unmarshal(items, &out); err != nil {
		logger.Warn("gateway: collection items failed to decode, defaulting to empty",
			zap.String("operation", op),
			zap.Error(err),
		)
		return []T{}
	}
	if out == nil {
		out = []T{}
	}
	return out
}

// UnwrapPaginated decodes a paginated list response, returning items plus
// page metadata. Non-paginated shapes still decode; the page is nil then.
func UnwrapPaginated[T any](raw json.RawMessage, logger *zap.Logger, op string) ([]T, *domain.Page) {
	items := UnwrapCollection[T](raw, logger, op)
	env, err := DecodeEnvelope(raw)
	if err != nil {
		return items, nil
	}
	return items, env.Page
}

// collectionItems digs the item array out of normalized envelope data:
// either the data field itself is an array, or data is an object holding a
// nested paginated data array.
func collectionItems(data json.RawMessage) (json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, false
	}
	if trimmed[0] == '[' {
		return trimmed, true
	}
	if trimmed[0] == '{' {
		var nested struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &nested); err != nil {
			return nil, false
		}
		inner := bytes.TrimSpace(nested.Data)
		if len(inner) > 0 && inner[0] == '[' {
			return inner, true
		}
	}
	return nil, false
}

func envelopeMessage(env *Envelope) string {
	if env.Message != "" {
		return env.Message
	}
	return "operation failed"
}
