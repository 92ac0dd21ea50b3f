// Package wire encodes compiled packages for plugins and decodes the files
// plugins send back. Two encodings are supported: JSON and MessagePack.
package wire

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
)

// Encoding selects the wire format exchanged with a plugin.
type Encoding string

const (
	JSON        Encoding = "json"
	MessagePack Encoding = "messagepack"
)

// ParseEncoding maps "json" and "messagepack" (or "msgpack") to an Encoding.
// An empty string selects JSON.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "messagepack", "msgpack":
		return MessagePack, nil
	}
	return "", fmt.Errorf("wire: unknown encoding %q (want json or messagepack)", s)
}

func (e Encoding) String() string { return string(e) }

func (e Encoding) marshal(v any) ([]byte, error) {
	switch e {
	case JSON:
		return json.Marshal(v)
	case MessagePack:
		return msgpack.Marshal(v)
	}
	return nil, fmt.Errorf("wire: unknown encoding %q", string(e))
}

func (e Encoding) unmarshal(b []byte, v any) error {
	switch e {
	case JSON:
		return json.Unmarshal(b, v)
	case MessagePack:
		return msgpack.Unmarshal(b, v)
	}
	return fmt.Errorf("wire: unknown encoding %q", string(e))
}

// Output is the final payload of a plugin.
type Output struct {
	Files []File `json:"files" msgpack:"files"`
}

// File is one generated file. Path is relative to the output directory.
type File struct {
	Path   string `json:"path" msgpack:"path"`
	Buffer []byte `json:"buffer" msgpack:"buffer"`
}

// EncodeOutput serializes a plugin payload; plugins written in Go use it to
// reply.
func EncodeOutput(enc Encoding, out Output) ([]byte, error) {
	b, err := enc.marshal(out)
	if err != nil {
		return nil, fmt.Errorf("wire: encoding output: %w", err)
	}
	return b, nil
}

// DecodeOutput parses a plugin payload.
func DecodeOutput(enc Encoding, b []byte) (Output, error) {
	var out Output
	if err := enc.unmarshal(b, &out); err != nil {
		return Output{}, fmt.Errorf("wire: decoding %s output: %w", enc, err)
	}
	return out, nil
}
