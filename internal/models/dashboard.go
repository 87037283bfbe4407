package models

// DashboardStats are the admin dashboard counters.
type DashboardStats struct {
	TotalApplications   int `json:"total_applications"`
	PendingApplications int `json:"pending_applications"`
	TotalResults        int `json:"total_results"`
	ContactSubmissions  int `json:"contact_submissions"`
}
