package models

import (
	"encoding/json"
	"fmt"
)

// Submitter is the identity block shared by every form.
type Submitter struct {
	Name  string `json:"submitterName"`
	Email string `json:"submitterEmail"`
	Phone string `json:"submitterPhone"`
}

// FormPayload is the creation-time shape of a submission. It is sealed: only
// the five payload types in this package implement it, and every consumer
// dispatches through PayloadVisitor so a new form type must be handled
// everywhere before the module compiles again.
type FormPayload interface {
	FormType() FormType
	Identity() Submitter
	Accept(v PayloadVisitor)
	sealed()
}

type PayloadVisitor interface {
	VisitContact(*ContactPayload)
	VisitEventPlanning(*EventPlanningPayload)
	VisitServiceProvider(*ServiceProviderPayload)
	VisitPartnership(*PartnershipPayload)
	VisitFeedback(*FeedbackPayload)
}

type EventType string

const (
	EventCorporate  EventType = "corporate"
	EventWedding    EventType = "wedding"
	EventCultural   EventType = "cultural"
	EventInnovation EventType = "innovation"
	EventConference EventType = "conference"
	EventOther      EventType = "other"
)

var EventTypes = []EventType{EventCorporate, EventWedding, EventCultural, EventInnovation, EventConference, EventOther}

type ServiceCategory string

const (
	ServiceVenue          ServiceCategory = "venue"
	ServiceCatering       ServiceCategory = "catering"
	ServiceEntertainment  ServiceCategory = "entertainment"
	ServiceDesign         ServiceCategory = "design"
	ServiceTechnology     ServiceCategory = "technology"
	ServicePhotography    ServiceCategory = "photography"
	ServiceSecurity       ServiceCategory = "security"
	ServiceTransportation ServiceCategory = "transportation"
	ServiceOther          ServiceCategory = "other"
)

var ServiceCategories = []ServiceCategory{
	ServiceVenue, ServiceCatering, ServiceEntertainment, ServiceDesign, ServiceTechnology,
	ServicePhotography, ServiceSecurity, ServiceTransportation, ServiceOther,
}

var OrganizationTypes = []string{"company", "government", "non-profit", "academic", "media", "other"}

var PartnershipTypes = []string{"strategic", "sponsorship", "media", "technology", "venue", "other"}

var FeedbackCategories = []string{"organization", "venue", "catering", "entertainment", "speakers", "overall", "other"}

// BudgetBands are the event-planning budget choices, in SAR.
var BudgetBands = []string{"less-than-50k", "50k-100k", "100k-250k", "250k-500k", "more-than-500k"}

type ContactPayload struct {
	Submitter
	Message        string         `json:"message"`
	AdditionalData map[string]any `json:"additionalData,omitempty"`
}

type EventPlanningPayload struct {
	Submitter
	Organization        string    `json:"organization,omitempty"`
	EventType           EventType `json:"eventType,omitempty"`
	EventTitle          string    `json:"eventTitle"`
	EventDescription    string    `json:"eventDescription,omitempty"`
	EventDate           string    `json:"eventDate"`
	EventDuration       int       `json:"eventDuration,omitempty"`
	GuestCount          int       `json:"guestCount"`
	Venue               string    `json:"venue,omitempty"`
	Budget              string    `json:"budget,omitempty"`
	Services            []string  `json:"services,omitempty"`
	SpecialRequirements string    `json:"specialRequirements,omitempty"`
}

type ServiceProviderPayload struct {
	Submitter
	CompanyName     string          `json:"companyName"`
	ServiceCategory ServiceCategory `json:"serviceCategory"`
	BusinessLicense string          `json:"businessLicense,omitempty"`
	Experience      string          `json:"experience,omitempty"`
	PortfolioURL    string          `json:"portfolioUrl,omitempty"`
	ServicesOffered []string        `json:"servicesOffered,omitempty"`
	CoverageAreas   []string        `json:"coverageAreas,omitempty"`
	Description     string          `json:"description,omitempty"`
}

type PartnershipPayload struct {
	Submitter
	OrganizationName    string `json:"organizationName"`
	OrganizationType    string `json:"organizationType,omitempty"`
	PartnershipType     string `json:"partnershipType,omitempty"`
	ProposalDescription string `json:"proposalDescription"`
	ExpectedBenefits    string `json:"expectedBenefits,omitempty"`
	Resources           string `json:"resources,omitempty"`
	Timeline            string `json:"timeline,omitempty"`
}

type FeedbackPayload struct {
	Submitter
	EventName           string `json:"eventName"`
	Rating              int    `json:"rating"`
	FeedbackCategory    string `json:"feedbackCategory,omitempty"`
	FeedbackText        string `json:"feedbackText,omitempty"`
	RecommendationScore int    `json:"recommendationScore,omitempty"`
}

func (p *ContactPayload) FormType() FormType         { return FormContact }
func (p *EventPlanningPayload) FormType() FormType   { return FormEventPlanning }
func (p *ServiceProviderPayload) FormType() FormType { return FormServiceProvider }
func (p *PartnershipPayload) FormType() FormType     { return FormPartnership }
func (p *FeedbackPayload) FormType() FormType        { return FormFeedback }

func (p *ContactPayload) Identity() Submitter         { return p.Submitter }
func (p *EventPlanningPayload) Identity() Submitter   { return p.Submitter }
func (p *ServiceProviderPayload) Identity() Submitter { return p.Submitter }
func (p *PartnershipPayload) Identity() Submitter     { return p.Submitter }
func (p *FeedbackPayload) Identity() Submitter        { return p.Submitter }

func (p *ContactPayload) Accept(v PayloadVisitor)         { v.VisitContact(p) }
func (p *EventPlanningPayload) Accept(v PayloadVisitor)   { v.VisitEventPlanning(p) }
func (p *ServiceProviderPayload) Accept(v PayloadVisitor) { v.VisitServiceProvider(p) }
func (p *PartnershipPayload) Accept(v PayloadVisitor)     { v.VisitPartnership(p) }
func (p *FeedbackPayload) Accept(v PayloadVisitor)        { v.VisitFeedback(p) }

func (*ContactPayload) sealed()         {}
func (*EventPlanningPayload) sealed()   {}
func (*ServiceProviderPayload) sealed() {}
func (*PartnershipPayload) sealed()     {}
func (*FeedbackPayload) sealed()        {}

// MarshalPayload encodes a payload as the flat JSON object the submit
// endpoint expects, with the formType discriminator added.
func MarshalPayload(p FormPayload) ([]byte, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	fields["formType"] = p.FormType()
	return json.Marshal(fields)
}

// UnmarshalPayload reads the formType discriminator and decodes the rest of
// the object into the matching payload type.
func UnmarshalPayload(data []byte) (FormPayload, error) {
	var head struct {
		FormType FormType `json:"formType"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	var p FormPayload
	switch head.FormType {
	case FormContact:
		p = &ContactPayload{}
	case FormEventPlanning:
		p = &EventPlanningPayload{}
	case FormServiceProvider:
		p = &ServiceProviderPayload{}
	case FormPartnership:
		p = &PartnershipPayload{}
	case FormFeedback:
		p = &FeedbackPayload{}
	default:
		return nil, fmt.Errorf("unknown form type %q", head.FormType)
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", head.FormType, err)
	}
	return p, nil
}
