// Package validation decides whether a form payload is ready to be submitted.
// It performs no I/O.
package validation

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/thenextevent/eventdesk/internal/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string { return e.Message }

type Result struct {
	Valid  bool         `json:"isValid"`
	Errors []FieldError `json:"errors"`
}

// Messages returns the error messages in the order they were found.
func (r Result) Messages() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Message
	}
	return out
}

// Fields groups messages by field name, matching the server error shape.
func (r Result) Fields() map[string][]string {
	out := make(map[string][]string, len(r.Errors))
	for _, e := range r.Errors {
		out[e.Field] = append(out[e.Field], e.Message)
	}
	return out
}

// Error is returned by callers that refuse to send an invalid payload.
type Error struct {
	FormType models.FormType
	Result   Result
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s submission: %s", e.FormType, strings.Join(e.Result.Messages(), "; "))
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// Validate checks the shared submitter fields and the per-type rules of p and
// reports every violation.
func Validate(p models.FormPayload) Result {
	c := &checker{}
	who := p.Identity()
	c.required("submitterName", who.Name, "name is required")
	switch {
	case strings.TrimSpace(who.Email) == "":
		c.add("submitterEmail", "email is required")
	case !ValidEmail(who.Email):
		c.add("submitterEmail", "email address is not valid")
	}
	p.Accept(c)
	return Result{Valid: len(c.errs) == 0, Errors: c.errs}
}

type checker struct {
	errs []FieldError
}

func (c *checker) add(field, msg string) {
	c.errs = append(c.errs, FieldError{Field: field, Message: msg})
}

func (c *checker) required(field, value, msg string) {
	if strings.TrimSpace(value) == "" {
		c.add(field, msg)
	}
}

func (c *checker) oneOf(field, value string, allowed []string) {
	if value == "" || slices.Contains(allowed, value) {
		return
	}
	c.add(field, fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", ")))
}

func (c *checker) VisitContact(p *models.ContactPayload) {
	c.required("message", p.Message, "message is required")
	for _, k := range slices.Sorted(maps.Keys(p.AdditionalData)) {
		if !flatValue(p.AdditionalData[k]) {
			c.add("additionalData."+k, k+" must be a string, number, boolean or list of strings")
		}
	}
}

// flatValue reports whether v is a scalar or a list of strings.
func flatValue(v any) bool {
	switch v := v.(type) {
	case nil, string, bool, float64, float32, int, int32, int64:
		return true
	case []string:
		return true
	case []any:
		for _, e := range v {
			if _, ok := e.(string); !ok {
				return false
			}
		}
		return true
	}
	return false
}

func (c *checker) VisitEventPlanning(p *models.EventPlanningPayload) {
	c.required("eventTitle", p.EventTitle, "event title is required")
	c.required("eventDate", p.EventDate, "event date is required")
	if p.GuestCount < 1 {
		c.add("guestCount", "guest count must be greater than zero")
	}
	c.oneOf("eventType", string(p.EventType), strs(models.EventTypes))
	c.oneOf("budget", p.Budget, models.BudgetBands)
	if p.EventDuration < 0 {
		c.add("eventDuration", "event duration cannot be negative")
	}
}

func (c *checker) VisitServiceProvider(p *models.ServiceProviderPayload) {
	c.required("companyName", p.CompanyName, "company name is required")
	if p.ServiceCategory == "" {
		c.add("serviceCategory", "service category is required")
	} else {
		c.oneOf("serviceCategory", string(p.ServiceCategory), strs(models.ServiceCategories))
	}
}

func (c *checker) VisitPartnership(p *models.PartnershipPayload) {
	c.required("organizationName", p.OrganizationName, "organization name is required")
	c.required("proposalDescription", p.ProposalDescription, "proposal description is required")
	c.oneOf("organizationType", p.OrganizationType, models.OrganizationTypes)
	c.oneOf("partnershipType", p.PartnershipType, models.PartnershipTypes)
}

func (c *checker) VisitFeedback(p *models.FeedbackPayload) {
	c.required("eventName", p.EventName, "event name is required")
	if p.Rating < 1 || p.Rating > 5 {
		c.add("rating", "rating must be between 1 and 5")
	}
	c.oneOf("feedbackCategory", p.FeedbackCategory, models.FeedbackCategories)
	if p.RecommendationScore != 0 && (p.RecommendationScore < 1 || p.RecommendationScore > 10) {
		c.add("recommendationScore", "recommendation score must be between 1 and 10")
	}
}

func strs[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}
