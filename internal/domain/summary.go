package domain

// YearlySummaryItem is one (company, year) cell of the yearly summary matrix.
// Sections are present only when requested through the include parameter.
type YearlySummaryItem struct {
	CompanyCode string  `json:"company_code"`
	CompanyName string  `json:"company_name"`
	MarketType  *string `json:"market_type,omitempty"`
	Industry    *string `json:"industry,omitempty"`
	Year        int     `json:"year"`

	ViolationsYearCount  *int64 `json:"violations_year_count,omitempty"`
	ViolationsYearFine   *int64 `json:"violations_year_fine,omitempty"`
	ViolationsTotalCount *int64 `json:"violations_total_count,omitempty"`
	ViolationsTotalFine  *int64 `json:"violations_total_fine,omitempty"`

	EnvViolationsYearCount  *int64 `json:"env_violations_year_count,omitempty"`
	EnvViolationsYearFine   *int64 `json:"env_violations_year_fine,omitempty"`
	EnvViolationsTotalCount *int64 `json:"env_violations_total_count,omitempty"`
	EnvViolationsTotalFine  *int64 `json:"env_violations_total_fine,omitempty"`

	EmployeeBenefit  *EmployeeBenefit  `json:"employee_benefit,omitempty"`
	NonManagerSalary *NonManagerSalary `json:"non_manager_salary,omitempty"`
	WelfarePolicy    *WelfarePolicy    `json:"welfare_policy,omitempty"`
	SalaryAdjustment *SalaryAdjustment `json:"salary_adjustment,omitempty"`
}

// YearlySummaryIndex lists the years that have an exported shard
type YearlySummaryIndex struct {
	Years []int `json:"years"`
}

// LeaderboardItem identifies a company on a leaderboard
type LeaderboardItem struct {
	Rank        int    `json:"rank"`
	CompanyCode string `json:"company_code"`
	CompanyName string `json:"company_name"`
}

type ViolationLeaderboardItem struct {
	LeaderboardItem
	LaborCount int64 `json:"labor_count"`
	LaborFine  int64 `json:"labor_fine"`
	EnvCount   int64 `json:"env_count"`
	EnvFine    int64 `json:"env_fine"`
	TotalCount int64 `json:"total_count"`
	TotalFine  int64 `json:"total_fine"`
}

type SalaryLeaderboardItem struct {
	LeaderboardItem
	AvgSalary    *int64 `json:"avg_salary,omitempty"`
	MedianSalary *int64 `json:"median_salary,omitempty"`
}

type IndustrySalaryLeaderboardItem struct {
	SalaryLeaderboardItem
	Industry string `json:"industry"`
}

type ViolationLeaderboard struct {
	TopByCount    []ViolationLeaderboardItem `json:"top_by_count"`
	BottomByCount []ViolationLeaderboardItem `json:"bottom_by_count"`
	TopByFine     []ViolationLeaderboardItem `json:"top_by_fine"`
	BottomByFine  []ViolationLeaderboardItem `json:"bottom_by_fine"`
}

type SalaryLeaderboard struct {
	TopByAvg       []SalaryLeaderboardItem `json:"top_by_avg"`
	BottomByAvg    []SalaryLeaderboardItem `json:"bottom_by_avg"`
	TopByMedian    []SalaryLeaderboardItem `json:"top_by_median"`
	BottomByMedian []SalaryLeaderboardItem `json:"bottom_by_median"`
}

type IndustrySalaryLeaderboard struct {
	TopByAvg    []IndustrySalaryLeaderboardItem `json:"top_by_avg"`
	BottomByAvg []IndustrySalaryLeaderboardItem `json:"bottom_by_avg"`
}

// Leaderboards holds every leaderboard, keyed by ROC year where yearly
type Leaderboards struct {
	LatestYear       int                                          `json:"latest_year"`
	ViolationAllTime ViolationLeaderboard                         `json:"violation_all_time"`
	ViolationYearly  map[int]ViolationLeaderboard                 `json:"violation_yearly"`
	Salary           map[int]SalaryLeaderboard                    `json:"salary"`
	SalaryByIndustry map[int]map[string]IndustrySalaryLeaderboard `json:"salary_by_industry"`
}

// CategorySyncStatus reports freshness of one data category
type CategorySyncStatus struct {
	LastUpdated *string `json:"last_updated"`
	Count       int64   `json:"count"`
}

// SyncStatus is the last-synchronized snapshot per data family
type SyncStatus struct {
	Companies               map[string]CategorySyncStatus `json:"companies"`
	Violations              map[string]CategorySyncStatus `json:"violations"`
	MOPS                    map[string]CategorySyncStatus `json:"mops"`
	EnvironmentalViolations map[string]CategorySyncStatus `json:"environmental_violations,omitempty"`
}
