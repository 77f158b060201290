package dto

// PipelineDashboardResponse aggregates enquiry counts for the staff dashboard.
type PipelineDashboardResponse struct {
	TotalEnquiries     int64            `json:"total_enquiries"`
	ByStatus           map[string]int64 `json:"by_status"`
	BySource           map[string]int64 `json:"by_source"`
	OutstandingBalance float64          `json:"outstanding_balance"`
}
