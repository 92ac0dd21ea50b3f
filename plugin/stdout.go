package plugin

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Level is the severity of a plugin log event.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarning:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// Event is one structured log line emitted by a plugin.
type Event struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

const sentinel = "plugin:"

// ErrNoPayload is returned when the plugin output ends before the final
// payload.
var ErrNoPayload = errors.New("plugin: output ended without a payload")

// Stdout is what a plugin wrote to its output stream.
type Stdout struct {
	Name    string  // from the plugin: sentinel, empty when never sent
	Events  []Event // log events in arrival order
	Payload []byte  // raw final payload
}

type readState int

const (
	stateHeader  readState = iota // sentinel not seen yet
	stateNamed                    // sentinel seen, waiting for payload
	statePayload                  // payload started, the rest of the stream belongs to it
)

// ReadStdout splits a plugin output stream into log events, the optional
// name sentinel and the final payload. Each line is tried as a log event
// first, then as the sentinel (accepted once); the first line that is
// neither starts the payload, which extends to the end of the stream.
// Events are forwarded to log as they arrive.
func ReadStdout(r io.Reader, log zerolog.Logger) (Stdout, error) {
	var (
		out   Stdout
		state = stateHeader
		br    = bufio.NewReader(r)
	)
	for state != statePayload {
		line, err := br.ReadBytes('\n')
		if len(line) == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				return out, ErrNoPayload
			}
			return out, fmt.Errorf("plugin: reading output: %w", err)
		}
		text := strings.TrimRight(string(line), "\r\n")
		if strings.TrimSpace(text) == "" {
			continue
		}
		if ev, ok := parseEvent(text); ok {
			out.Events = append(out.Events, ev)
			log.WithLevel(ev.Level.zerolog()).Str("plugin", out.Name).Msg(ev.Message)
			continue
		}
		if state == stateHeader && strings.HasPrefix(strings.TrimSpace(text), sentinel) {
			out.Name = strings.TrimSpace(strings.TrimSpace(text)[len(sentinel):])
			state = stateNamed
			continue
		}
		rest, rerr := io.ReadAll(br)
		if rerr != nil {
			return out, fmt.Errorf("plugin: reading payload: %w", rerr)
		}
		out.Payload = append(line, rest...)
		state = statePayload
	}
	return out, nil
}

// parseEvent accepts a JSON object holding exactly a level in 0..3 and a
// message. Anything else, including a payload that merely happens to be
// JSON, is rejected.
func parseEvent(text string) (Event, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return Event{}, false
	}
	var raw struct {
		Level   *int    `json:"level"`
		Message *string `json:"message"`
	}
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil || dec.More() {
		return Event{}, false
	}
	if raw.Level == nil || raw.Message == nil || *raw.Level < int(LevelDebug) || *raw.Level > int(LevelError) {
		return Event{}, false
	}
	return Event{Level: Level(*raw.Level), Message: *raw.Message}, true
}

// WriteEvent writes ev as one log line. Plugins written in Go use it.
func WriteEvent(w io.Writer, ev Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

// WriteName writes the plugin: sentinel line.
func WriteName(w io.Writer, name string) error {
	_, err := io.WriteString(w, sentinel+name+"\n")
	return err
}

func tail(b []byte, n int) string {
	b = bytes.TrimSpace(b)
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}
