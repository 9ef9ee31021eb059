package dto

// DashboardResponse carries role-shaped counts for the landing dashboard.
// Super admins see process-wide numbers; everyone else sees their own
// institution only.
type DashboardResponse struct {
	Institutions int64 `json:"institutions,omitempty"`
	Teachers     int64 `json:"teachers"`
	Students     int64 `json:"students"`
	Classes      int64 `json:"classes"`
	Assignments  int64 `json:"assignments"`
}
