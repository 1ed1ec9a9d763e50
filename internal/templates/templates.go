// Package templates renders email templates with Liquid and ships the
// built-in welcome, contact, notification and newsletter layouts in Arabic
// and English.
package templates

import (
	"embed"
	"fmt"
	"sync"

	"github.com/osteele/liquid"

	"github.com/thenextevent/eventdesk/internal/models"
)

//go:embed html/*.html
var layouts embed.FS

type Kind string

const (
	KindWelcome      Kind = "welcome"
	KindContact      Kind = "contact"
	KindNotification Kind = "notification"
	KindNewsletter   Kind = "newsletter"
)

var Kinds = []Kind{KindWelcome, KindContact, KindNotification, KindNewsletter}

func (k Kind) Valid() bool {
	for _, v := range Kinds {
		if v == k {
			return true
		}
	}
	return false
}

// Renderer parses Liquid sources once per cache key.
type Renderer struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

func NewRenderer() *Renderer {
	return &Renderer{engine: liquid.NewEngine()}
}

// Render evaluates src against vars. Missing variables render as empty
// strings. A non-empty key caches the parsed template.
func (r *Renderer) Render(key, src string, vars map[string]any) (string, error) {
	var tpl *liquid.Template
	if key != "" {
		if cached, ok := r.cache.Load(key); ok {
			tpl = cached.(*liquid.Template)
		}
	}
	if tpl == nil {
		parsed, err := r.engine.ParseString(src)
		if err != nil {
			return "", fmt.Errorf("parse template: %w", err)
		}
		tpl = parsed
		if key != "" {
			r.cache.Store(key, tpl)
		}
	}
	out, err := tpl.RenderString(vars)
	if err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return out, nil
}

// Forget drops a cached template, e.g. after it was edited.
func (r *Renderer) Forget(key string) { r.cache.Delete(key) }

var defaultRenderer = NewRenderer()

// Render uses the package-level renderer without caching.
func Render(src string, vars map[string]any) (string, error) {
	return defaultRenderer.Render("", src, vars)
}

// Strings converts string variables to Liquid bindings.
func Strings(vars map[string]string) map[string]any {
	out := make(map[string]any, len(vars))
	for k, v := range vars {
		out[k] = v
	}
	return out
}

type texts struct {
	suffix, subject, text string
}

var catalog = map[Kind]map[string]texts{
	KindWelcome: {
		"ar": {"ترحيب", "مرحباً بك في The Next Event", "مرحباً بك في The Next Event، شركتك الموثوقة لتنظيم الفعاليات."},
		"en": {"Welcome", "Welcome to The Next Event", "Welcome to The Next Event, your trusted event management company."},
	},
	KindContact: {
		"ar": {"رد على الاستفسار", "شكراً لتواصلك معنا", "شكراً لتواصلك معنا. سنقوم بالرد عليك في أقرب وقت ممكن."},
		"en": {"Contact Reply", "Thank you for contacting us", "Thank you for contacting us. We will get back to you as soon as possible."},
	},
	KindNotification: {
		"ar": {"إشعار", "إشعار من The Next Event", "لديك إشعار جديد من The Next Event."},
		"en": {"Notification", "Notification from The Next Event", "You have a new notification from The Next Event."},
	},
	KindNewsletter: {
		"ar": {"نشرة إخبارية", "آخر أخبار The Next Event", "اطلع على آخر أخبار وفعاليات The Next Event."},
		"en": {"Newsletter", "Latest News from The Next Event", "Check out the latest news and events from The Next Event."},
	},
}

var variableLabels = map[string][4]string{
	"ar": {"اسم المستقبل", "اسم الشركة", "اسم الفعالية", "تاريخ الفعالية"},
	"en": {"Recipient Name", "Company Name", "Event Name", "Event Date"},
}

// Default builds an unsaved template of the given kind. Unknown languages
// fall back to Arabic.
func Default(name string, kind Kind, lang string) (models.EmailTemplate, error) {
	if !kind.Valid() {
		return models.EmailTemplate{}, fmt.Errorf("unknown template kind %q", kind)
	}
	if lang != "en" {
		lang = "ar"
	}
	body, err := layouts.ReadFile(fmt.Sprintf("html/%s.%s.html", kind, lang))
	if err != nil {
		return models.EmailTemplate{}, err
	}
	t := catalog[kind][lang]
	labels := variableLabels[lang]
	return models.EmailTemplate{
		Name:        name + " - " + t.suffix,
		Subject:     t.subject,
		HTMLContent: string(body),
		TextContent: t.text,
		Language:    lang,
		Category:    string(kind),
		IsActive:    true,
		Variables: []models.TemplateVariable{
			{Name: "recipientName", Description: labels[0]},
			{Name: "companyName", Description: labels[1]},
			{Name: "eventName", Description: labels[2]},
			{Name: "eventDate", Description: labels[3]},
		},
	}, nil
}
