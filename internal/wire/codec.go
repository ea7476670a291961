// Package wire reads and writes Content-Length delimited frames carrying
// JSON-RPC 2.0 envelopes, the way the Language Server Protocol transport
// does. The codec is synchronous: one blocking read consumes exactly one
// frame, one blocking write produces exactly one frame and flushes. A
// caller may run the read and write paths on separate goroutines; the
// codec holds no shared mutable state between them.
package wire

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yukin371/lspwire/internal/protocol"
	"github.com/yukin371/lspwire/pkg/logger"
)

// Version is the fixed jsonrpc envelope field value.
const Version = "2.0"

// Option configures a Codec.
type Option func(*Codec)

// WithTranscoder sets the compact encoder tried on every outgoing
// envelope. When it fails, the codec logs the failure and falls back to
// plain JSON; a write never fails solely because the transcoder did.
func WithTranscoder(t Transcoder) Option {
	return func(c *Codec) { c.transcoder = t }
}

// WithLogger sets the logger used for payload tracing and transcoder
// failure reports. The codec never depends on logging being configured.
func WithLogger(log *logger.Logger) Option {
	return func(c *Codec) { c.log = log }
}

// Codec frames and unframes messages over a byte stream.
type Codec struct {
	in         *bufio.Reader
	out        *bufio.Writer
	transcoder Transcoder
	log        *logger.Logger
}

// NewCodec returns a codec reading frames from in and writing frames to
// out.
func NewCodec(in io.Reader, out io.Writer, opts ...Option) *Codec {
	c := &Codec{
		in:  bufio.NewReader(in),
		out: bufio.NewWriter(out),
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ReadMessage reads one frame and decodes its payload into a Message.
// A clean end of stream, before any header bytes of the next frame, is
// reported as io.EOF; every other failure is an error describing the
// fault, after which the stream should be treated as unrecoverable.
func (c *Codec) ReadMessage() (*protocol.Message, error) {
	payload, err := c.readFrame()
	if err != nil {
		return nil, err
	}
	var msg protocol.Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("wire: failed to decode message: %w", err)
	}
	return &msg, nil
}

// readFrame reads one header block plus payload and returns the payload
// text.
func (c *Codec) readFrame() ([]byte, error) {
	size := -1
	first := true

	for {
		line, err := c.in.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				if first && line == "" {
					return nil, io.EOF
				}
				// mid-block EOF is a framing fault, not a clean close
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("wire: malformed header %q: %w", line, err)
		}
		first = false

		if !strings.HasSuffix(line, "\r\n") {
			return nil, fmt.Errorf("wire: malformed header %q: missing CRLF", line)
		}
		line = line[:len(line)-2]
		if line == "" {
			break
		}

		name, value, ok := strings.Cut(line, ": ")
		if !ok {
			return nil, fmt.Errorf("wire: malformed header %q: missing separator", line)
		}
		// Only Content-Length is interpreted; unknown headers pass by.
		if strings.EqualFold(name, "Content-Length") {
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("wire: invalid Content-Length %q", value)
			}
			size = n
		}
	}

	if size < 0 {
		return nil, errors.New("wire: no Content-Length")
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(c.in, payload); err != nil {
		return nil, fmt.Errorf("wire: failed to read %d payload bytes: %w", size, err)
	}
	if !utf8.Valid(payload) {
		return nil, errors.New("wire: payload is not valid UTF-8")
	}

	c.log.Debug("< %s", payload)
	return payload, nil
}

// WriteMessage serializes the message with the jsonrpc envelope field,
// offers it to the transcoder and frames either the compact bytes or,
// when transcoding fails or is not configured, the JSON text.
func (c *Codec) WriteMessage(msg *protocol.Message) error {
	text, err := marshalEnvelope(msg)
	if err != nil {
		return fmt.Errorf("wire: failed to encode message: %w", err)
	}
	c.log.Debug("> %s", text)

	payload := text
	if c.transcoder != nil {
		alt, err := c.transcoder.Encode(text)
		if err != nil {
			c.log.Warn("failed to transcode message, falling back to JSON: %v", err)
		} else {
			payload = alt
		}
	}
	return c.writeFrame(payload)
}

// writeFrame writes one Content-Length header block plus payload and
// flushes the sink.
func (c *Codec) writeFrame(payload []byte) error {
	if _, err := fmt.Fprintf(c.out, "Content-Length: %d\r\n\r\n", len(payload)); err != nil {
		return fmt.Errorf("wire: failed to write frame header: %w", err)
	}
	if _, err := c.out.Write(payload); err != nil {
		return fmt.Errorf("wire: failed to write frame payload: %w", err)
	}
	if err := c.out.Flush(); err != nil {
		return fmt.Errorf("wire: failed to flush frame: %w", err)
	}
	return nil
}

// Envelope shapes. The jsonrpc field exists only here, at the wire
// boundary; the protocol types never carry it.

type requestEnvelope struct {
	JSONRPC string             `json:"jsonrpc"`
	ID      protocol.RequestID `json:"id"`
	Method  string             `json:"method"`
	Params  protocol.Params    `json:"params"`
}

type responseEnvelope struct {
	JSONRPC string                  `json:"jsonrpc"`
	ID      protocol.RequestID      `json:"id"`
	Result  json.RawMessage         `json:"result,omitempty"`
	Error   *protocol.ResponseError `json:"error,omitempty"`
}

type notificationEnvelope struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  protocol.Params `json:"params"`
}

func marshalEnvelope(msg *protocol.Message) (json.RawMessage, error) {
	switch {
	case msg.Request != nil:
		return json.Marshal(requestEnvelope{
			JSONRPC: Version,
			ID:      msg.Request.ID,
			Method:  msg.Request.Method,
			Params:  msg.Request.Params,
		})
	case msg.Response != nil:
		return json.Marshal(responseEnvelope{
			JSONRPC: Version,
			ID:      msg.Response.ID,
			Result:  msg.Response.Result,
			Error:   msg.Response.Error,
		})
	case msg.Notification != nil:
		return json.Marshal(notificationEnvelope{
			JSONRPC: Version,
			Method:  msg.Notification.Method,
			Params:  msg.Notification.Params,
		})
	}
	return nil, errors.New("empty message")
}
