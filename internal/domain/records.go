package domain

// Violation is a labor-law violation record
type Violation struct {
	ID               int64   `json:"id"`
	CompanyName      string  `json:"company_name"`
	DataSource       string  `json:"data_source"`
	Authority        *string `json:"authority,omitempty"`
	PenaltyDate      *string `json:"penalty_date,omitempty"`
	AnnouncementDate *string `json:"announcement_date,omitempty"`
	DispositionNo    *string `json:"disposition_no,omitempty"`
	LawArticle       *string `json:"law_article,omitempty"`
	ViolationContent *string `json:"violation_content,omitempty"`
	FineAmount       int64   `json:"fine_amount"`
	CompanyCode      *string `json:"company_code,omitempty"`
	CreatedAt        string  `json:"created_at"`
	LastUpdated      string  `json:"last_updated"`
}

// EnvironmentalViolation is an environmental penalty record
type EnvironmentalViolation struct {
	ID               int64   `json:"id"`
	CompanyCode      *string `json:"company_code,omitempty"`
	TaxID            *string `json:"tax_id,omitempty"`
	ControlNo        *string `json:"control_no,omitempty"`
	DispositionNo    *string `json:"disposition_no,omitempty"`
	CompanyName      string  `json:"company_name"`
	CompanyAddress   *string `json:"company_address,omitempty"`
	ViolationAddress *string `json:"violation_address,omitempty"`
	ViolationType    *string `json:"violation_type,omitempty"`
	ViolationDate    *string `json:"violation_date,omitempty"`
	ViolationReason  *string `json:"violation_reason,omitempty"`
	LawArticle       *string `json:"law_article,omitempty"`
	Authority        *string `json:"authority,omitempty"`
	PenaltyDate      *string `json:"penalty_date,omitempty"`
	FineAmount       int64   `json:"fine_amount"`
	PenaltyReason    *string `json:"penalty_reason,omitempty"`
	LimitDate        *string `json:"limit_date,omitempty"`
	IsImproved       *bool   `json:"is_improved,omitempty"`
	IsAppeal         *bool   `json:"is_appeal,omitempty"`
	AppealResult     *string `json:"appeal_result,omitempty"`
	IsPaid           *bool   `json:"is_paid,omitempty"`
	IllegalProfit    *int64  `json:"illegal_profit,omitempty"`
	OtherPenalty     *string `json:"other_penalty,omitempty"`
	IsSerious        *bool   `json:"is_serious,omitempty"`
	CreatedAt        string  `json:"created_at"`
	LastUpdated      string  `json:"last_updated"`
}

// MOPSRecord carries the fields shared by every MOPS disclosure
type MOPSRecord struct {
	ID             int64   `json:"id"`
	CompanyCode    *string `json:"company_code,omitempty"`
	RawCompanyCode string  `json:"raw_company_code"`
	CompanyName    string  `json:"company_name"`
	Year           int     `json:"year"`
	MarketType     string  `json:"market_type"`
	Industry       *string `json:"industry,omitempty"`
	CreatedAt      string  `json:"created_at"`
	LastUpdated    string  `json:"last_updated"`
}

// EmployeeBenefit is the employee benefit disclosure (t100sb14)
type EmployeeBenefit struct {
	MOPSRecord
	EmployeeCount          *int64   `json:"employee_count,omitempty"`
	EmployeeSalary         *int64   `json:"employee_salary,omitempty"`
	SalaryPerEmployee      *int64   `json:"salary_per_employee,omitempty"`
	SupervisorSalary       *int64   `json:"supervisor_salary,omitempty"`
	MedianEmployeeSalary   *int64   `json:"median_employee_salary,omitempty"`
	NonSupervisorCount     *int64   `json:"non_supervisor_count,omitempty"`
	NonSupervisorSalary    *int64   `json:"non_supervisor_salary,omitempty"`
	SalaryPerNonSupervisor *int64   `json:"salary_per_non_supervisor,omitempty"`
	SalaryChangeRate       *float64 `json:"salary_change_rate,omitempty"`
	CompanyCategory        *string  `json:"company_category,omitempty"`
}

// NonManagerSalary is the non-manager salary disclosure (t100sb15)
type NonManagerSalary struct {
	MOPSRecord
	EmployeeCount      *int64   `json:"employee_count,omitempty"`
	AvgSalary          *int64   `json:"avg_salary,omitempty"`
	MedianSalary       *int64   `json:"median_salary,omitempty"`
	AvgSalaryChange    *float64 `json:"avg_salary_change,omitempty"`
	MedianSalaryChange *float64 `json:"median_salary_change,omitempty"`
	EPS                *float64 `json:"eps,omitempty"`
	IndustryAvgEPS     *float64 `json:"industry_avg_eps,omitempty"`
}

// WelfarePolicy is the welfare policy disclosure (t100sb13)
type WelfarePolicy struct {
	MOPSRecord
	PlannedSalaryIncrease        *string `json:"planned_salary_increase,omitempty"`
	PlannedSalaryIncreaseNote    *string `json:"planned_salary_increase_note,omitempty"`
	ActualSalaryIncrease         *string `json:"actual_salary_increase,omitempty"`
	ActualSalaryIncreaseNote     *string `json:"actual_salary_increase_note,omitempty"`
	NonManagerSalaryIncrease     *string `json:"non_manager_salary_increase,omitempty"`
	NonManagerSalaryIncreaseNote *string `json:"non_manager_salary_increase_note,omitempty"`
	ManagerSalaryIncrease        *string `json:"manager_salary_increase,omitempty"`
	ManagerSalaryIncreaseNote    *string `json:"manager_salary_increase_note,omitempty"`
	EntrySalaryMaster            *string `json:"entry_salary_master,omitempty"`
	EntrySalaryBachelor          *string `json:"entry_salary_bachelor,omitempty"`
	EntrySalaryHighschool        *string `json:"entry_salary_highschool,omitempty"`
	EntrySalaryNote              *string `json:"entry_salary_note,omitempty"`
}

// SalaryAdjustment is the employee remuneration disclosure (t222sb01)
type SalaryAdjustment struct {
	MOPSRecord
	PretaxNetProfit         *int64  `json:"pretax_net_profit,omitempty"`
	AllocationRatioMin      *string `json:"allocation_ratio_min,omitempty"`
	AllocationRatioMax      *string `json:"allocation_ratio_max,omitempty"`
	BoardResolutionDate     *string `json:"board_resolution_date,omitempty"`
	ActualAllocationRatio   *string `json:"actual_allocation_ratio,omitempty"`
	BasicEmployeeDefinition *string `json:"basic_employee_definition,omitempty"`
	BasicEmployeeCount      *int64  `json:"basic_employee_count,omitempty"`
	TotalAllocationAmount   *int64  `json:"total_allocation_amount,omitempty"`
	AllocationMethod        *string `json:"allocation_method,omitempty"`
	DifferenceAmount        *string `json:"difference_amount,omitempty"`
	DifferenceReason        *string `json:"difference_reason,omitempty"`
	DifferenceHandling      *string `json:"difference_handling,omitempty"`
	Note                    *string `json:"note,omitempty"`
}
