package models

import (
	"fmt"
	"time"
)

type FormType string

const (
	FormContact         FormType = "contact"
	FormEventPlanning   FormType = "event-planning"
	FormServiceProvider FormType = "service-provider"
	FormPartnership     FormType = "partnership"
	FormFeedback        FormType = "feedback"
)

// FormTypes lists every form type in display order.
var FormTypes = []FormType{FormContact, FormEventPlanning, FormServiceProvider, FormPartnership, FormFeedback}

func (t FormType) Valid() bool {
	for _, ft := range FormTypes {
		if ft == t {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "inProgress"
	StatusCompleted  Status = "completed"
	StatusArchived   Status = "archived"
)

var Statuses = []Status{StatusNew, StatusInProgress, StatusCompleted, StatusArchived}

func (s Status) Valid() bool {
	for _, st := range Statuses {
		if st == s {
			return true
		}
	}
	return false
}

func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", v)
	}
	return s, nil
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p Priority) Valid() bool {
	for _, pr := range Priorities {
		if pr == p {
			return true
		}
	}
	return false
}

// Submission is a stored form submission. The dashboard-only fields
// (priority, tags, assignment, lastUpdated) travel on the same record.
type Submission struct {
	ID             int64          `json:"id,omitempty"`
	FormType       FormType       `json:"formType"`
	SubmitterName  string         `json:"submitterName"`
	SubmitterEmail string         `json:"submitterEmail"`
	SubmitterPhone string         `json:"submitterPhone"`
	Message        string         `json:"message"`
	Status         Status         `json:"status,omitempty"`
	IsRead         bool           `json:"isRead"`
	AdminNotes     string         `json:"adminNotes,omitempty"`
	Priority       Priority       `json:"priority,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
	AssignedTo     string         `json:"assignedTo,omitempty"`
	Attachments    []string       `json:"attachments,omitempty"`
	AdditionalData map[string]any `json:"additionalData,omitempty"`
	SubmittedAt    time.Time      `json:"submittedAt"`
	UpdatedAt      *time.Time     `json:"updatedAt,omitempty"`
	LastUpdated    time.Time      `json:"lastUpdated"`
}

// DashboardFilters parametrizes a single list query. Empty fields and the
// "all" sentinel disable the corresponding filter.
type DashboardFilters struct {
	FormType   string `json:"formType,omitempty" url:"formType,omitempty"`
	Status     string `json:"status,omitempty" url:"status,omitempty"`
	Priority   string `json:"priority,omitempty" url:"priority,omitempty"`
	DateFrom   string `json:"dateFrom,omitempty" url:"dateFrom,omitempty"`
	DateTo     string `json:"dateTo,omitempty" url:"dateTo,omitempty"`
	AssignedTo string `json:"assignedTo,omitempty" url:"assignedTo,omitempty"`
	SearchTerm string `json:"searchTerm,omitempty" url:"searchTerm,omitempty"`
	Page       int    `json:"page,omitempty" url:"page,omitempty"`
	Limit      int    `json:"limit,omitempty" url:"limit,omitempty"`
}

// FilterAll is the sentinel that disables a categorical filter.
const FilterAll = "all"

// FormListParams is the query accepted by the /forms listing.
type FormListParams struct {
	Page     int    `url:"page,omitempty"`
	PageSize int    `url:"pageSize,omitempty"`
	FormType string `url:"formType,omitempty"`
	Status   string `url:"status,omitempty"`
	DateFrom string `url:"dateFrom,omitempty"`
	DateTo   string `url:"dateTo,omitempty"`
	Search   string `url:"search,omitempty"`
}

// Filters converts the /forms query into the shared filter shape.
func (p FormListParams) Filters() DashboardFilters {
	return DashboardFilters{
		FormType:   p.FormType,
		Status:     p.Status,
		DateFrom:   p.DateFrom,
		DateTo:     p.DateTo,
		SearchTerm: p.Search,
		Page:       p.Page,
		Limit:      p.PageSize,
	}
}

type StatusUpdate struct {
	Status     Status `json:"status"`
	AdminNotes string `json:"adminNotes,omitempty"`
}

type BulkStatusUpdate struct {
	FormIDs    []int64 `json:"formIds"`
	Status     Status  `json:"status"`
	AdminNotes string  `json:"adminNotes,omitempty"`
}

type BulkDelete struct {
	FormIDs []int64 `json:"formIds"`
}

type Reply struct {
	Subject     string   `json:"subject"`
	Message     string   `json:"message"`
	Attachments []string `json:"attachments,omitempty"`
}
