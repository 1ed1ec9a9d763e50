package backend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/thenextevent/eventdesk/internal/logging"
	"github.com/thenextevent/eventdesk/internal/mailer"
	"github.com/thenextevent/eventdesk/internal/models"
	"github.com/thenextevent/eventdesk/internal/repository"
	"github.com/thenextevent/eventdesk/internal/templates"
	"github.com/thenextevent/eventdesk/internal/validation"
)

// bulkConcurrency bounds parallel provider calls for one bulk send.
const bulkConcurrency = 4

var statsPeriodDays = map[string]int{"day": 1, "week": 7, "month": 30, "year": 365}

type EmailService struct {
	emails   *repository.EmailRepo
	sender   mailer.Sender
	renderer *templates.Renderer
	now      func() time.Time
}

func NewEmailService(emails *repository.EmailRepo, sender mailer.Sender) *EmailService {
	return &EmailService{emails: emails, sender: sender, renderer: templates.NewRenderer(), now: time.Now}
}

func checkRecipients(errs FieldErrors, field string, addrs []string) {
	if len(addrs) == 0 && field == "to" {
		errs.add(field, "at least one recipient is required")
	}
	for _, a := range addrs {
		if !validation.ValidEmail(a) {
			errs.add(field, fmt.Sprintf("%q is not a valid email address", a))
		}
	}
}

func (s *EmailService) Send(ctx context.Context, msg models.EmailMessage) (*models.SendResult, error) {
	errs := FieldErrors{}
	checkRecipients(errs, "to", msg.To)
	checkRecipients(errs, "cc", msg.CC)
	checkRecipients(errs, "bcc", msg.BCC)
	if err := errs.err(); err != nil {
		return nil, err
	}
	out := mailer.Message{To: msg.To, CC: msg.CC, BCC: msg.BCC, Subject: msg.Subject}
	if msg.IsHTML {
		out.HTML = msg.Body
	} else {
		out.Text = msg.Body
	}
	return s.deliver(ctx, out, nil)
}

// SendTemplate renders the stored template with req.TemplateData and sends
// it. A non-empty req.Subject replaces the template subject.
func (s *EmailService) SendTemplate(ctx context.Context, req models.TemplateEmail) (*models.SendResult, error) {
	errs := FieldErrors{}
	checkRecipients(errs, "to", req.To)
	if err := errs.err(); err != nil {
		return nil, err
	}
	tpl, err := s.emails.Template(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	msg, err := s.render(tpl, templates.Strings(req.TemplateData))
	if err != nil {
		return nil, err
	}
	msg.To = req.To
	if req.Subject != "" {
		msg.Subject = req.Subject
	}
	return s.deliver(ctx, msg, &tpl.ID)
}

// SendBulk renders the template once per recipient, binding name and the
// recipient's customData, and sends the messages concurrently.
func (s *EmailService) SendBulk(ctx context.Context, req models.BulkEmail) (*models.BulkResult, error) {
	if req.ScheduledDate != "" {
		return nil, FieldErrors{"scheduledDate": {"scheduled sending is not supported"}}
	}
	addrs := make([]string, len(req.Recipients))
	for i, r := range req.Recipients {
		addrs[i] = r.Email
	}
	errs := FieldErrors{}
	checkRecipients(errs, "to", addrs)
	if err := errs.err(); err != nil {
		return nil, err
	}
	tpl, err := s.emails.Template(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		failed int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkConcurrency)
	for _, r := range req.Recipients {
		g.Go(func() error {
			vars := templates.Strings(r.CustomData)
			vars["recipientName"] = r.Name
			vars["name"] = r.Name
			msg, err := s.render(tpl, vars)
			if err != nil {
				return err
			}
			msg.To = []string{r.Email}
			if req.Subject != "" {
				msg.Subject = req.Subject
			}
			if _, err := s.deliver(gctx, msg, &tpl.ID); err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	status := "sent"
	switch {
	case failed == len(req.Recipients):
		status = "failed"
	case failed > 0:
		status = "partial"
	}
	return &models.BulkResult{CampaignID: uuid.NewString(), Status: status}, nil
}

// Reply answers a submission with the contact reply layout in lang.
func (s *EmailService) Reply(ctx context.Context, sub *models.Submission, reply models.Reply, lang string) (*models.SendResult, error) {
	if strings.TrimSpace(reply.Message) == "" {
		return nil, FieldErrors{"message": {"message is required"}}
	}
	tpl, err := templates.Default("reply", templates.KindContact, lang)
	if err != nil {
		return nil, err
	}
	msg, err := s.render(&tpl, map[string]any{
		"recipientName": sub.SubmitterName,
		"ticketNumber":  fmt.Sprintf("TNE-%06d", sub.ID),
		"message":       reply.Message,
	})
	if err != nil {
		return nil, err
	}
	msg.To = []string{sub.SubmitterEmail}
	if reply.Subject != "" {
		msg.Subject = reply.Subject
	}
	return s.deliver(ctx, msg, nil)
}

func (s *EmailService) render(tpl *models.EmailTemplate, vars map[string]any) (mailer.Message, error) {
	key := func(part string) string {
		if tpl.ID == 0 {
			return ""
		}
		return fmt.Sprintf("template:%d:%s", tpl.ID, part)
	}
	subject, err := s.renderer.Render(key("subject"), tpl.Subject, vars)
	if err != nil {
		return mailer.Message{}, err
	}
	html, err := s.renderer.Render(key("html"), tpl.HTMLContent, vars)
	if err != nil {
		return mailer.Message{}, err
	}
	text, err := s.renderer.Render(key("text"), tpl.TextContent, vars)
	if err != nil {
		return mailer.Message{}, err
	}
	return mailer.Message{Subject: subject, HTML: html, Text: text}, nil
}

// deliver sends msg and writes one log row per recipient, whatever the
// outcome.
func (s *EmailService) deliver(ctx context.Context, msg mailer.Message, templateID *int64) (*models.SendResult, error) {
	id, sendErr := s.sender.Send(ctx, msg)
	entry := models.EmailLog{
		Subject:    msg.Subject,
		Status:     models.EmailSent,
		MessageID:  id,
		SentAt:     s.now().UTC(),
		TemplateID: templateID,
	}
	if sendErr != nil {
		entry.Status = models.EmailFailed
		entry.ErrorMessage = sendErr.Error()
		if entry.MessageID == "" {
			entry.MessageID = uuid.NewString()
		}
	}
	for _, to := range append(append(append([]string{}, msg.To...), msg.CC...), msg.BCC...) {
		entry.Recipient = to
		if _, err := s.emails.CreateLog(ctx, &entry); err != nil {
			slog.ErrorContext(ctx, "email log write failed", "to", logging.RedactEmail(to), "error", err)
		}
	}
	if sendErr != nil {
		return nil, fmt.Errorf("send email: %w", sendErr)
	}
	return &models.SendResult{MessageID: id, Status: string(models.EmailSent)}, nil
}

func (s *EmailService) Templates(ctx context.Context, p models.TemplateListParams) (models.PagedItems[models.EmailTemplate], error) {
	return s.emails.Templates(ctx, p)
}

func (s *EmailService) Template(ctx context.Context, id int64) (*models.EmailTemplate, error) {
	return s.emails.Template(ctx, id)
}

func checkTemplate(t models.EmailTemplate) error {
	errs := FieldErrors{}
	if strings.TrimSpace(t.Name) == "" {
		errs.add("name", "name is required")
	}
	if strings.TrimSpace(t.Subject) == "" {
		errs.add("subject", "subject is required")
	}
	if strings.TrimSpace(t.HTMLContent) == "" {
		errs.add("htmlContent", "htmlContent is required")
	}
	if t.Language != "ar" && t.Language != "en" {
		errs.add("language", "language must be ar or en")
	}
	for field, src := range map[string]string{"subject": t.Subject, "htmlContent": t.HTMLContent, "textContent": t.TextContent} {
		if _, err := templates.Render(src, map[string]any{}); err != nil {
			errs.add(field, err.Error())
		}
	}
	return errs.err()
}

func (s *EmailService) CreateTemplate(ctx context.Context, t models.EmailTemplate) (*models.EmailTemplate, error) {
	if err := checkTemplate(t); err != nil {
		return nil, err
	}
	id, err := s.emails.CreateTemplate(ctx, t, s.now())
	if err != nil {
		return nil, err
	}
	return s.emails.Template(ctx, id)
}

func (s *EmailService) UpdateTemplate(ctx context.Context, id int64, t models.EmailTemplate) (*models.EmailTemplate, error) {
	if err := checkTemplate(t); err != nil {
		return nil, err
	}
	if err := s.emails.UpdateTemplate(ctx, id, t, s.now()); err != nil {
		return nil, err
	}
	s.forget(id)
	return s.emails.Template(ctx, id)
}

func (s *EmailService) DeleteTemplate(ctx context.Context, id int64) error {
	if err := s.emails.DeleteTemplate(ctx, id); err != nil {
		return err
	}
	s.forget(id)
	return nil
}

func (s *EmailService) forget(id int64) {
	for _, part := range []string{"subject", "html", "text"} {
		s.renderer.Forget(fmt.Sprintf("template:%d:%s", id, part))
	}
}

func (s *EmailService) Logs(ctx context.Context, p models.EmailLogParams) (models.PagedItems[models.EmailLog], error) {
	return s.emails.Logs(ctx, p)
}

func (s *EmailService) Log(ctx context.Context, id int64) (*models.EmailLog, error) {
	return s.emails.Log(ctx, id)
}

// Resend sends a logged template email again with its template's default
// rendering. Bodies are not retained, so plain messages cannot be resent.
func (s *EmailService) Resend(ctx context.Context, logID int64) (*models.SendResult, error) {
	entry, err := s.emails.Log(ctx, logID)
	if err != nil {
		return nil, err
	}
	if entry.TemplateID == nil {
		return nil, fmt.Errorf("%w: only template emails can be resent", repository.ErrInvalid)
	}
	tpl, err := s.emails.Template(ctx, *entry.TemplateID)
	if err != nil {
		return nil, err
	}
	msg, err := s.render(tpl, map[string]any{})
	if err != nil {
		return nil, err
	}
	msg.To = []string{entry.Recipient}
	msg.Subject = entry.Subject
	return s.deliver(ctx, msg, entry.TemplateID)
}

func (s *EmailService) Statistics(ctx context.Context, period string) (*models.EmailStatistics, error) {
	if period == "" {
		period = "week"
	}
	days, ok := statsPeriodDays[period]
	if !ok {
		return nil, FieldErrors{"period": {fmt.Sprintf("unknown period %q", period)}}
	}
	return s.emails.Statistics(ctx, startOfDay(s.now()).AddDate(0, 0, -(days-1)))
}

func (s *EmailService) HandleStatus(ctx context.Context, ev models.StatusEvent) error {
	switch ev.Status {
	case models.EmailSent, models.EmailDelivered, models.EmailFailed, models.EmailBounced, models.EmailComplained:
	default:
		return FieldErrors{"status": {fmt.Sprintf("unknown status %q", ev.Status)}}
	}
	return s.emails.SetStatus(ctx, ev.MessageID, ev.Status, ev.Details, s.now())
}

func (s *EmailService) HandleBounce(ctx context.Context, ev models.BounceEvent) error {
	details := strings.Trim(ev.BounceType+"/"+ev.BounceSubType, "/")
	return s.emails.SetStatus(ctx, ev.MessageID, models.EmailBounced, details, s.now())
}

func (s *EmailService) HandleComplaint(ctx context.Context, ev models.ComplaintEvent) error {
	return s.emails.SetStatus(ctx, ev.MessageID, models.EmailComplained, ev.ComplaintType, s.now())
}
