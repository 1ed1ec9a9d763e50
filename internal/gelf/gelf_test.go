package gelf

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterSendsSlogRecord(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	w, err := New(pc.LocalAddr().String(), "eventdesk-api")
	require.NoError(t, err)
	defer w.Close()

	line := `{"time":"2024-01-15T10:30:00Z","level":"WARN","msg":"submit rejected","form_type":"contact","id":7}` + "\n"
	n, err := w.Write([]byte(line))
	require.NoError(t, err)
	assert.Equal(t, len(line), n)

	buf := make([]byte, 4096)
	require.NoError(t, pc.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err = pc.ReadFrom(buf)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf[:n], &got))
	assert.Equal(t, "1.1", got["version"])
	assert.Equal(t, "submit rejected", got["short_message"])
	assert.Equal(t, float64(4), got["level"])
	assert.Equal(t, "contact", got["_form_type"])
	assert.Equal(t, float64(7), got["_record_id"])
	assert.Equal(t, "eventdesk-api", got["_service"])
	assert.InDelta(t, 1705314600, got["timestamp"], 0.001)
}

func TestMessagePlainText(t *testing.T) {
	w := &Writer{hostname: "h", service: "s"}
	got := w.Message([]byte("not json"))
	assert.Equal(t, "not json", got["short_message"])
	assert.Equal(t, 6, got["level"])
}
