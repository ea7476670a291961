package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukin371/lspwire/internal/protocol"
)

func frame(payload string) string {
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(payload), payload)
}

func TestReadMessage(t *testing.T) {
	input := "Content-Length: 52\r\n\r\n" +
		`{"jsonrpc":"2.0","id":1,"method":"ping","params":{}}`

	codec := NewCodec(strings.NewReader(input), io.Discard)
	msg, err := codec.ReadMessage()
	require.NoError(t, err)
	require.NotNil(t, msg.Request)
	assert.Equal(t, protocol.IntID(1), msg.Request.ID)
	assert.Equal(t, "ping", msg.Request.Method)

	// the stream is exhausted: next read is a clean end of stream
	_, err = codec.ReadMessage()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadMessageHeaderHandling(t *testing.T) {
	payload := `{"jsonrpc":"2.0","method":"exit","params":{}}`

	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "unknown headers are ignored",
			input: fmt.Sprintf("Content-Type: application/json\r\nContent-Length: %d\r\n\r\n%s", len(payload), payload),
		},
		{
			name:  "header name is case-insensitive",
			input: fmt.Sprintf("content-length: %d\r\n\r\n%s", len(payload), payload),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec := NewCodec(strings.NewReader(tt.input), io.Discard)
			msg, err := codec.ReadMessage()
			require.NoError(t, err)
			require.NotNil(t, msg.Notification)
			assert.Equal(t, "exit", msg.Notification.Method)
		})
	}
}

func TestReadMessageFramingErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "missing Content-Length",
			input:   "Content-Type: application/json\r\n\r\n",
			wantErr: "no Content-Length",
		},
		{
			name:    "header line without CRLF",
			input:   "Content-Length: 2\n\n{}",
			wantErr: "malformed header",
		},
		{
			name:    "header line without separator",
			input:   "Content-Length\r\n\r\n",
			wantErr: "malformed header",
		},
		{
			name:    "unparsable Content-Length",
			input:   "Content-Length: twelve\r\n\r\n",
			wantErr: "invalid Content-Length",
		},
		{
			name:    "negative Content-Length",
			input:   "Content-Length: -5\r\n\r\n",
			wantErr: "invalid Content-Length",
		},
		{
			name:    "stream ends mid-header block",
			input:   "Content-Length: 10\r\n",
			wantErr: "malformed header",
		},
		{
			name:    "payload shorter than declared",
			input:   "Content-Length: 99\r\n\r\n{}",
			wantErr: "payload",
		},
		{
			name:    "payload is not UTF-8",
			input:   "Content-Length: 2\r\n\r\n\xff\xfe",
			wantErr: "UTF-8",
		},
		{
			name:    "payload matches no message variant",
			input:   frame(`{"jsonrpc":"2.0","unexpected":true}`),
			wantErr: "decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec := NewCodec(strings.NewReader(tt.input), io.Discard)
			_, err := codec.ReadMessage()
			require.Error(t, err)
			assert.NotErrorIs(t, err, io.EOF)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReadMessageTruncatedHeaderBlock(t *testing.T) {
	// a header line arrived but the stream died before the blank line;
	// errors.Is must not confuse that with a clean end of stream
	codec := NewCodec(strings.NewReader("Content-Length: 10\r\n"), io.Discard)
	_, err := codec.ReadMessage()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadMessageEmptyStream(t *testing.T) {
	codec := NewCodec(strings.NewReader(""), io.Discard)
	_, err := codec.ReadMessage()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadMessageConsumesExactPayload(t *testing.T) {
	var input bytes.Buffer
	input.WriteString(frame(`{"jsonrpc":"2.0","id":1,"method":"a","params":{}}`))
	input.WriteString(frame(`{"jsonrpc":"2.0","id":1,"result":null}`))

	codec := NewCodec(&input, io.Discard)

	first, err := codec.ReadMessage()
	require.NoError(t, err)
	require.NotNil(t, first.Request)

	second, err := codec.ReadMessage()
	require.NoError(t, err)
	require.NotNil(t, second.Response)
	assert.Equal(t, "null", string(second.Response.Result))

	_, err = codec.ReadMessage()
	assert.ErrorIs(t, err, io.EOF)
}

func TestWriteMessage(t *testing.T) {
	resp, err := protocol.NewResponse(protocol.IntID(1), "pong")
	require.NoError(t, err)

	var out bytes.Buffer
	codec := NewCodec(strings.NewReader(""), &out)
	require.NoError(t, codec.WriteMessage(&protocol.Message{Response: resp}))

	want := "Content-Length: 40\r\n\r\n" +
		`{"jsonrpc":"2.0","id":1,"result":"pong"}`
	assert.Equal(t, want, out.String())
}

func TestWriteMessageEnvelopes(t *testing.T) {
	req, err := protocol.NewRequest(protocol.IntID(3), "ping", map[string]int{"count": 2})
	require.NoError(t, err)
	note, err := protocol.NewNotification("exit", nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		msg  *protocol.Message
		want string
	}{
		{
			name: "request",
			msg:  &protocol.Message{Request: req},
			want: `{"jsonrpc":"2.0","id":3,"method":"ping","params":{"params":{"count":2}}}`,
		},
		{
			name: "notification omits id and null payload",
			msg:  &protocol.Message{Notification: note},
			want: `{"jsonrpc":"2.0","method":"exit","params":{}}`,
		},
		{
			name: "error response omits result",
			msg:  &protocol.Message{Response: protocol.NewErrorResponse(protocol.IntID(4), protocol.MethodNotFound, "method not found: frobnicate")},
			want: `{"jsonrpc":"2.0","id":4,"error":{"code":-32601,"message":"method not found: frobnicate"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			codec := NewCodec(strings.NewReader(""), &out)
			require.NoError(t, codec.WriteMessage(tt.msg))
			assert.Equal(t, frame(tt.want), out.String())
		})
	}
}

func TestRoundTrip(t *testing.T) {
	uri := "file:///tmp/a.go"
	req, err := protocol.NewRequest(protocol.StringID("r-9"), "textDocument/completion", map[string]int{"count": 1})
	require.NoError(t, err)
	req.Params.URI = &uri
	req.Params.Context = &protocol.Context{
		Completion: &protocol.CompletionContext{
			Line:        "foo.",
			Prefix:      "foo.",
			StartPoint:  4,
			BoundsStart: 0,
			TriggerKind: protocol.TriggerCharacter,
		},
	}

	resp, err := protocol.NewResponse(protocol.IntID(12), []string{"a", "b"})
	require.NoError(t, err)
	note, err := protocol.NewNotification("initialized", struct{}{})
	require.NoError(t, err)

	messages := []*protocol.Message{
		{Request: req},
		{Response: resp},
		{Response: protocol.NewErrorResponse(protocol.IntID(13), protocol.RequestCanceled, "canceled")},
		{Notification: note},
	}

	var buf bytes.Buffer
	writer := NewCodec(strings.NewReader(""), &buf)
	for _, msg := range messages {
		require.NoError(t, writer.WriteMessage(msg))
	}

	reader := NewCodec(&buf, io.Discard)
	for _, want := range messages {
		got, err := reader.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err = reader.ReadMessage()
	assert.ErrorIs(t, err, io.EOF)
}

func TestWriteMessageTranscoder(t *testing.T) {
	note, err := protocol.NewNotification("exit", nil)
	require.NoError(t, err)
	msg := &protocol.Message{Notification: note}

	t.Run("alternate encoding is framed", func(t *testing.T) {
		var out bytes.Buffer
		codec := NewCodec(strings.NewReader(""), &out, WithTranscoder(
			TranscoderFunc(func(envelope json.RawMessage) ([]byte, error) {
				return []byte("#[compact]"), nil
			}),
		))
		require.NoError(t, codec.WriteMessage(msg))
		assert.Equal(t, "Content-Length: 10\r\n\r\n#[compact]", out.String())
	})

	t.Run("failure falls back to JSON", func(t *testing.T) {
		var out bytes.Buffer
		codec := NewCodec(strings.NewReader(""), &out, WithTranscoder(
			TranscoderFunc(func(envelope json.RawMessage) ([]byte, error) {
				return nil, errors.New("unsupported value")
			}),
		))
		// the write must never fail solely because the transcoder failed
		require.NoError(t, codec.WriteMessage(msg))
		assert.Equal(t, frame(`{"jsonrpc":"2.0","method":"exit","params":{}}`), out.String())
	})

	t.Run("transcoder sees the envelope", func(t *testing.T) {
		var seen json.RawMessage
		codec := NewCodec(strings.NewReader(""), io.Discard, WithTranscoder(
			TranscoderFunc(func(envelope json.RawMessage) ([]byte, error) {
				seen = envelope
				return nil, errors.New("record only")
			}),
		))
		require.NoError(t, codec.WriteMessage(msg))
		assert.JSONEq(t, `{"jsonrpc":"2.0","method":"exit","params":{}}`, string(seen))
	})
}
