package domain

import "time"

// Company is the full company record served by the backend
type Company struct {
	Code              string  `json:"code"`
	Name              string  `json:"name"`
	Abbreviation      *string `json:"abbreviation,omitempty"`
	MarketType        string  `json:"market_type"`
	Industry          *string `json:"industry,omitempty"`
	TaxID             *string `json:"tax_id,omitempty"`
	Chairman          *string `json:"chairman,omitempty"`
	Manager           *string `json:"manager,omitempty"`
	EstablishmentDate *string `json:"establishment_date,omitempty"`
	ListingDate       *string `json:"listing_date,omitempty"`
	Capital           *int64  `json:"capital,omitempty"`
	Address           *string `json:"address,omitempty"`
	Website           *string `json:"website,omitempty"`
	Email             *string `json:"email,omitempty"`
	LastUpdated       string  `json:"last_updated"`
}

// CatalogEntry is the lightweight directory record used for listing and search
type CatalogEntry struct {
	Code              string  `json:"code"`
	Name              string  `json:"name"`
	Abbreviation      *string `json:"abbreviation,omitempty"`
	MarketType        string  `json:"market_type"`
	Industry          *string `json:"industry,omitempty"`
	Capital           *int64  `json:"capital,omitempty"`
	EstablishmentDate *string `json:"establishment_date,omitempty"`
	ListingDate       *string `json:"listing_date,omitempty"`
}

// Company converts a catalog entry into a Company. Fields the catalog does not
// carry stay nil and LastUpdated is stamped with now.
func (c CatalogEntry) Company(now time.Time) Company {
	return Company{
		Code:              c.Code,
		Name:              c.Name,
		Abbreviation:      c.Abbreviation,
		MarketType:        c.MarketType,
		Industry:          c.Industry,
		Capital:           c.Capital,
		EstablishmentDate: c.EstablishmentDate,
		ListingDate:       c.ListingDate,
		LastUpdated:       now.UTC().Format(time.RFC3339),
	}
}

// CatalogEntry projects a Company onto the catalog shape
func (c Company) CatalogEntry() CatalogEntry {
	return CatalogEntry{
		Code:              c.Code,
		Name:              c.Name,
		Abbreviation:      c.Abbreviation,
		MarketType:        c.MarketType,
		Industry:          c.Industry,
		Capital:           c.Capital,
		EstablishmentDate: c.EstablishmentDate,
		ListingDate:       c.ListingDate,
	}
}

// CompanyProfile aggregates one company with all of its associated records
type CompanyProfile struct {
	Company                 Company                  `json:"company"`
	Violations              []Violation              `json:"violations"`
	EnvironmentalViolations []EnvironmentalViolation `json:"environmental_violations,omitempty"`
	EmployeeBenefits        []EmployeeBenefit        `json:"employee_benefits"`
	NonManagerSalaries      []NonManagerSalary       `json:"non_manager_salaries"`
	WelfarePolicies         []WelfarePolicy          `json:"welfare_policies"`
	SalaryAdjustments       []SalaryAdjustment       `json:"salary_adjustments"`
}

// Page is one page of a paginated collection
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Size       int `json:"size"`
	TotalPages int `json:"total_pages"`
}

// Str returns a pointer to s, nil when s is empty
func Str(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Int returns a pointer to n
func Int(n int64) *int64 {
	return &n
}

// Deref returns the pointed-to string or ""
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
