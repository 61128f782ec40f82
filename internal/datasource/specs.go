package datasource

import (
	"github.com/bossy-radar/radar/internal/domain"
	"github.com/bossy-radar/radar/internal/query"
)

// Field accessors for the in-memory query engine. Sort keys use the JSON
// field names accepted by the backend.

var catalogSpec = query.Spec[domain.CatalogEntry]{
	Code: func(c domain.CatalogEntry) string { return c.Code },
	Text: []func(domain.CatalogEntry) string{
		func(c domain.CatalogEntry) string { return c.Name },
		func(c domain.CatalogEntry) string { return c.Code },
	},
	Industry:   func(c domain.CatalogEntry) string { return domain.Deref(c.Industry) },
	MarketType: func(c domain.CatalogEntry) string { return c.MarketType },
	Fields: map[string]func(domain.CatalogEntry) any{
		"code":               func(c domain.CatalogEntry) any { return c.Code },
		"name":               func(c domain.CatalogEntry) any { return c.Name },
		"abbreviation":       func(c domain.CatalogEntry) any { return query.Value(c.Abbreviation) },
		"market_type":        func(c domain.CatalogEntry) any { return c.MarketType },
		"industry":           func(c domain.CatalogEntry) any { return query.Value(c.Industry) },
		"capital":            func(c domain.CatalogEntry) any { return query.Value(c.Capital) },
		"establishment_date": func(c domain.CatalogEntry) any { return query.Value(c.EstablishmentDate) },
		"listing_date":       func(c domain.CatalogEntry) any { return query.Value(c.ListingDate) },
	},
	DefaultSort: []string{"code"},
}

var yearlySummarySpec = query.Spec[domain.YearlySummaryItem]{
	Code: func(s domain.YearlySummaryItem) string { return s.CompanyCode },
	Text: []func(domain.YearlySummaryItem) string{
		func(s domain.YearlySummaryItem) string { return s.CompanyName },
		func(s domain.YearlySummaryItem) string { return s.CompanyCode },
	},
	Industry:   func(s domain.YearlySummaryItem) string { return domain.Deref(s.Industry) },
	MarketType: func(s domain.YearlySummaryItem) string { return domain.Deref(s.MarketType) },
	Year:       func(s domain.YearlySummaryItem) int { return s.Year },
	Fields: map[string]func(domain.YearlySummaryItem) any{
		"company_code":           func(s domain.YearlySummaryItem) any { return s.CompanyCode },
		"company_name":           func(s domain.YearlySummaryItem) any { return s.CompanyName },
		"market_type":            func(s domain.YearlySummaryItem) any { return query.Value(s.MarketType) },
		"industry":               func(s domain.YearlySummaryItem) any { return query.Value(s.Industry) },
		"year":                   func(s domain.YearlySummaryItem) any { return s.Year },
		"violations_year_count":  func(s domain.YearlySummaryItem) any { return query.Value(s.ViolationsYearCount) },
		"violations_year_fine":   func(s domain.YearlySummaryItem) any { return query.Value(s.ViolationsYearFine) },
		"violations_total_count": func(s domain.YearlySummaryItem) any { return query.Value(s.ViolationsTotalCount) },
		"violations_total_fine":  func(s domain.YearlySummaryItem) any { return query.Value(s.ViolationsTotalFine) },
	},
	DefaultSort: []string{"-year", "company_code"},
}

// mopsSpec builds a spec for a MOPS record type from its shared header and
// any type-specific sortable fields
func mopsSpec[T any](header func(T) domain.MOPSRecord, extra map[string]func(T) any) query.Spec[T] {
	fields := map[string]func(T) any{
		"id":               func(r T) any { return header(r).ID },
		"year":             func(r T) any { return header(r).Year },
		"company_code":     func(r T) any { return query.Value(header(r).CompanyCode) },
		"raw_company_code": func(r T) any { return header(r).RawCompanyCode },
		"company_name":     func(r T) any { return header(r).CompanyName },
		"market_type":      func(r T) any { return header(r).MarketType },
		"industry":         func(r T) any { return query.Value(header(r).Industry) },
	}
	for k, f := range extra {
		fields[k] = f
	}

	return query.Spec[T]{
		Code: func(r T) string { return domain.Deref(header(r).CompanyCode) },
		Text: []func(T) string{
			func(r T) string { return header(r).CompanyName },
			func(r T) string { return header(r).RawCompanyCode },
		},
		Industry:    func(r T) string { return domain.Deref(header(r).Industry) },
		MarketType:  func(r T) string { return header(r).MarketType },
		Year:        func(r T) int { return header(r).Year },
		Fields:      fields,
		DefaultSort: []string{"-year", "-id"},
	}
}

var employeeBenefitSpec = mopsSpec(
	func(r domain.EmployeeBenefit) domain.MOPSRecord { return r.MOPSRecord },
	map[string]func(domain.EmployeeBenefit) any{
		"employee_count":         func(r domain.EmployeeBenefit) any { return query.Value(r.EmployeeCount) },
		"employee_salary":        func(r domain.EmployeeBenefit) any { return query.Value(r.EmployeeSalary) },
		"salary_per_employee":    func(r domain.EmployeeBenefit) any { return query.Value(r.SalaryPerEmployee) },
		"median_employee_salary": func(r domain.EmployeeBenefit) any { return query.Value(r.MedianEmployeeSalary) },
		"salary_change_rate":     func(r domain.EmployeeBenefit) any { return query.Value(r.SalaryChangeRate) },
	},
)

var nonManagerSalarySpec = mopsSpec(
	func(r domain.NonManagerSalary) domain.MOPSRecord { return r.MOPSRecord },
	map[string]func(domain.NonManagerSalary) any{
		"employee_count":       func(r domain.NonManagerSalary) any { return query.Value(r.EmployeeCount) },
		"avg_salary":           func(r domain.NonManagerSalary) any { return query.Value(r.AvgSalary) },
		"median_salary":        func(r domain.NonManagerSalary) any { return query.Value(r.MedianSalary) },
		"avg_salary_change":    func(r domain.NonManagerSalary) any { return query.Value(r.AvgSalaryChange) },
		"median_salary_change": func(r domain.NonManagerSalary) any { return query.Value(r.MedianSalaryChange) },
		"eps":                  func(r domain.NonManagerSalary) any { return query.Value(r.EPS) },
	},
)

var welfarePolicySpec = mopsSpec(
	func(r domain.WelfarePolicy) domain.MOPSRecord { return r.MOPSRecord },
	nil,
)

var salaryAdjustmentSpec = mopsSpec(
	func(r domain.SalaryAdjustment) domain.MOPSRecord { return r.MOPSRecord },
	map[string]func(domain.SalaryAdjustment) any{
		"pretax_net_profit":       func(r domain.SalaryAdjustment) any { return query.Value(r.PretaxNetProfit) },
		"basic_employee_count":    func(r domain.SalaryAdjustment) any { return query.Value(r.BasicEmployeeCount) },
		"total_allocation_amount": func(r domain.SalaryAdjustment) any { return query.Value(r.TotalAllocationAmount) },
	},
)
