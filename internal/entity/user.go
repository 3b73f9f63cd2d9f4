package entity

// User is a demo-grade local account. There is no password storage; login
// matches on email alone.
type User struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	Plan          string `json:"plan"` // free | pro | enterprise
	InvoicesCount int    `json:"invoicesCount"`
	Status        string `json:"status"`
	JoinDate      string `json:"joinDate"`
	Company       string `json:"company,omitempty"`
}

// DashboardSummary aggregates the metric-card numbers for the dashboard.
type DashboardSummary struct {
	TotalInvoices int     `json:"totalInvoices"`
	TotalRevenue  float64 `json:"totalRevenue"`
	Pending       int     `json:"pending"` // status == generated
	Paid          int     `json:"paid"`
}
