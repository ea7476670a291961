package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// CompletionTriggerKind says how a completion was triggered (LSP 3.17).
type CompletionTriggerKind int

const (
	TriggerInvoked                  CompletionTriggerKind = 1
	TriggerCharacter                CompletionTriggerKind = 2
	TriggerForIncompleteCompletions CompletionTriggerKind = 3
)

// CompletionContext carries the editor-side completion state.
type CompletionContext struct {
	Line        string                `json:"line"`
	Prefix      string                `json:"prefix"`
	StartPoint  int32                 `json:"startPoint"`
	BoundsStart int32                 `json:"boundsStart"`
	TriggerKind CompletionTriggerKind `json:"triggerKind"`
}

// ResolveContext addresses a span handled by one language server.
type ResolveContext struct {
	LanguageServerID uint  `json:"language-server-id"`
	Start            int32 `json:"start"`
	End              int32 `json:"end"`
}

// WorkspaceContext names the workspace a message applies to.
type WorkspaceContext struct {
	WorkspaceRoot string `json:"workspace-root"`
}

// CommonContext routes a message to one language server.
type CommonContext struct {
	LanguageServerID uint `json:"language-server-id"`
}

// Context is a union of the per-method side-channel contexts. Exactly one
// field is set. There is no discriminant on the wire: the variant is
// picked by which required fields are present, most specific first.
type Context struct {
	Completion *CompletionContext
	Resolve    *ResolveContext
	Common     *CommonContext
	Workspace  *WorkspaceContext
}

// hasFields reports whether every named top-level key exists in data.
func hasFields(data []byte, keys ...string) bool {
	for _, key := range keys {
		if !gjson.GetBytes(data, key).Exists() {
			return false
		}
	}
	return true
}

// contextVariants lists the candidate variants in decode priority order.
// CommonContext's field set is a subset of ResolveContext's and
// CompletionContext's, so the stricter schemas must be tried first or an
// object would be misclassified as the looser one.
var contextVariants = []struct {
	required []string
	decode   func(data []byte, c *Context) error
}{
	{
		required: []string{"line", "prefix", "startPoint", "boundsStart", "triggerKind"},
		decode: func(data []byte, c *Context) error {
			var v CompletionContext
			if err := json.Unmarshal(data, &v); err != nil {
				return err
			}
			c.Completion = &v
			return nil
		},
	},
	{
		required: []string{"language-server-id", "start", "end"},
		decode: func(data []byte, c *Context) error {
			var v ResolveContext
			if err := json.Unmarshal(data, &v); err != nil {
				return err
			}
			c.Resolve = &v
			return nil
		},
	},
	{
		required: []string{"language-server-id"},
		decode: func(data []byte, c *Context) error {
			var v CommonContext
			if err := json.Unmarshal(data, &v); err != nil {
				return err
			}
			c.Common = &v
			return nil
		},
	},
	{
		required: []string{"workspace-root"},
		decode: func(data []byte, c *Context) error {
			var v WorkspaceContext
			if err := json.Unmarshal(data, &v); err != nil {
				return err
			}
			c.Workspace = &v
			return nil
		},
	},
}

// UnmarshalJSON picks the first variant whose full required field set is
// present and correctly typed.
func (c *Context) UnmarshalJSON(data []byte) error {
	for _, variant := range contextVariants {
		if !hasFields(data, variant.required...) {
			continue
		}
		var out Context
		if err := variant.decode(data, &out); err != nil {
			continue
		}
		*c = out
		return nil
	}
	return fmt.Errorf("protocol: data did not match any context variant: %s", data)
}

// MarshalJSON writes the variant that is set.
func (c Context) MarshalJSON() ([]byte, error) {
	switch {
	case c.Completion != nil:
		return json.Marshal(c.Completion)
	case c.Resolve != nil:
		return json.Marshal(c.Resolve)
	case c.Common != nil:
		return json.Marshal(c.Common)
	case c.Workspace != nil:
		return json.Marshal(c.Workspace)
	}
	return nil, fmt.Errorf("protocol: empty context")
}

// Params wraps a method's payload together with the uri/context side
// channels. The inner payload defaults to JSON null and is omitted from
// the envelope when null.
type Params struct {
	URI     *string         `json:"uri,omitempty"`
	Context *Context        `json:"context,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func isNullPayload(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// MarshalJSON omits the inner payload when it is null, not just when it
// is unset.
func (p Params) MarshalJSON() ([]byte, error) {
	type params Params
	out := params(p)
	if isNullPayload(out.Params) {
		out.Params = nil
	}
	return json.Marshal(out)
}
