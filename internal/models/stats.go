package models

type SystemStatus string

const (
	SystemOnline      SystemStatus = "online"
	SystemMaintenance SystemStatus = "maintenance"
	SystemError       SystemStatus = "error"
)

type DashboardStats struct {
	TotalSubmissions int64              `json:"totalSubmissions"`
	PendingReviews   int64              `json:"pendingReviews"`
	ActiveUsers      int64              `json:"activeUsers"`
	CompletedForms   int64              `json:"completedForms"`
	TotalRevenue     float64            `json:"totalRevenue"`
	SystemStatus     SystemStatus       `json:"systemStatus"`
	MonthlyGrowth    float64            `json:"monthlyGrowth"`
	ByStatus         map[Status]int64   `json:"byStatus,omitempty"`
	ByPriority       map[Priority]int64 `json:"byPriority,omitempty"`
}

type FormStatistics struct {
	TotalSubmissions      int64              `json:"totalSubmissions"`
	NewSubmissions        int64              `json:"newSubmissions"`
	InProgressSubmissions int64              `json:"inProgressSubmissions"`
	CompletedSubmissions  int64              `json:"completedSubmissions"`
	TodaySubmissions      int64              `json:"todaySubmissions"`
	WeekSubmissions       int64              `json:"weekSubmissions"`
	MonthSubmissions      int64              `json:"monthSubmissions"`
	ByType                map[FormType]int64 `json:"byType,omitempty"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}
