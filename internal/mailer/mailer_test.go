package mailer

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	s := LogSender{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	id, err := s.Send(context.Background(), Message{To: []string{"fatima.ali@company.com"}, Subject: "Re: event", HTML: "<p>hi</p>"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Contains(t, buf.String(), id)
	assert.NotContains(t, buf.String(), "fatima.ali@company.com")
}

func TestMessageValidation(t *testing.T) {
	s := LogSender{}
	for name, msg := range map[string]Message{
		"no recipients": {Subject: "s", Text: "t"},
		"no subject":    {To: []string{"a@example.com"}, Text: "t"},
		"no body":       {To: []string{"a@example.com"}, Subject: "s"},
	} {
		_, err := s.Send(context.Background(), msg)
		assert.Error(t, err, name)
	}
}
