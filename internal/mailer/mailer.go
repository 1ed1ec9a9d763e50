// Package mailer delivers outgoing email through a pluggable backend.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/google/uuid"

	"github.com/thenextevent/eventdesk/internal/logging"
)

type Message struct {
	From    string
	To      []string
	CC      []string
	BCC     []string
	Subject string
	HTML    string
	Text    string
}

func (m Message) validate() error {
	if len(m.To) == 0 {
		return errors.New("mailer: no recipients")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("mailer: empty subject")
	}
	if m.HTML == "" && m.Text == "" {
		return errors.New("mailer: empty body")
	}
	return nil
}

// Sender returns the provider message id of an accepted message.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// LogSender accepts every valid message and only logs it.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.validate(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recipients := make([]string, len(msg.To))
	for i, to := range msg.To {
		recipients[i] = logging.RedactEmail(to)
	}
	logger.InfoContext(ctx, "email accepted", "message_id", id, "to", recipients, "subject", msg.Subject)
	return id, nil
}

type SESSender struct {
	client *sesv2.Client
	from   string
}

// NewSESSender uses the default AWS credential chain.
func NewSESSender(ctx context.Context, region, from string) (*SESSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &SESSender{client: sesv2.NewFromConfig(cfg), from: from}, nil
}

func (s *SESSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.validate(); err != nil {
		return "", err
	}
	from := msg.From
	if from == "" {
		from = s.from
	}
	body := &types.Body{}
	if msg.HTML != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")}
	}
	if msg.Text != "" {
		body.Text = &types.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")}
	}
	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses:  msg.To,
			CcAddresses:  msg.CC,
			BccAddresses: msg.BCC,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body:    body,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ses send: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}
