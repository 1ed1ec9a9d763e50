// Package gelf ships JSON log lines to a Graylog UDP input.
package gelf

import (
	"bytes"
	"encoding/json"
	"net"
	"os"
	"strings"
	"time"
)

// Writer sends one GELF message per JSON log line. It is meant to sit
// behind io.MultiWriter next to stdout, so it never fails a write.
type Writer struct {
	conn     net.Conn
	hostname string
	service  string
}

// New dials addr (e.g. "172.17.0.1:12201").
func New(addr, service string) (*Writer, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = service
	}
	return &Writer{conn: conn, hostname: hostname, service: service}, nil
}

// syslog severities
func level(v any) int {
	s, _ := v.(string)
	switch strings.ToUpper(s) {
	case "DEBUG":
		return 7
	case "WARN":
		return 4
	case "ERROR":
		return 3
	}
	return 6
}

// Message converts one slog JSON record to a GELF 1.1 payload. Lines that
// are not JSON are sent as plain short messages.
func (w *Writer) Message(line []byte) map[string]any {
	msg := map[string]any{
		"version":   "1.1",
		"host":      w.hostname,
		"timestamp": float64(time.Now().UnixNano()) / 1e9,
		"level":     6,
		"_service":  w.service,
	}
	var rec map[string]any
	if err := json.Unmarshal(line, &rec); err != nil {
		msg["short_message"] = string(line)
		return msg
	}
	for k, v := range rec {
		switch k {
		case "msg":
			msg["short_message"] = v
		case "level":
			msg["level"] = level(v)
		case "time":
			if s, ok := v.(string); ok {
				if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
					msg["timestamp"] = float64(t.UnixNano()) / 1e9
				}
			}
		case "id":
			// reserved by GELF
			msg["_record_id"] = v
		default:
			msg["_"+k] = v
		}
	}
	if _, ok := msg["short_message"]; !ok {
		msg["short_message"] = string(line)
	}
	return msg
}

func (w *Writer) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(p, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		payload, err := json.Marshal(w.Message(line))
		if err != nil {
			continue
		}
		// fire-and-forget
		w.conn.Write(payload)
	}
	return len(p), nil
}

func (w *Writer) Close() error {
	return w.conn.Close()
}
