package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// placeholder substitutes any display field the server left out.
const placeholder = "N/A"

// Employee is one roster record. The API is known to emit two naming
// schemes (name/department/satisfaction_score from older datasets,
// job_role/monthly_income from newer ones), and any display field may be
// null or missing, so everything except the identifier is optional.
type Employee struct {
	ID                *int64       `json:"id"`
	EmployeeID        *int64       `json:"employee_id"`
	Name              *string      `json:"name"`
	Department        *string      `json:"department"`
	SatisfactionScore *json.Number `json:"satisfaction_score"`
	JobRole           *string      `json:"job_role"`
	MonthlyIncome     *json.Number `json:"monthly_income"`
}

// Identifier returns the record id under whichever key the server used.
func (e Employee) Identifier() string {
	if e.ID != nil {
		return fmt.Sprintf("%d", *e.ID)
	}
	if e.EmployeeID != nil {
		return fmt.Sprintf("%d", *e.EmployeeID)
	}
	return placeholder
}

// DisplayName prefers the explicit name and falls back to the job role.
func (e Employee) DisplayName() string {
	return firstString(e.Name, e.JobRole)
}

// DisplayDepartment returns the department or the placeholder.
func (e Employee) DisplayDepartment() string {
	return firstString(e.Department)
}

// DisplayScore prefers the satisfaction score and falls back to the
// monthly income.
func (e Employee) DisplayScore() string {
	return firstNumber(e.SatisfactionScore, e.MonthlyIncome)
}

// DisplayRow renders the record as "id / name / department / score", one
// column per display field, placeholder for anything absent.
func (e Employee) DisplayRow() string {
	return strings.Join([]string{
		e.Identifier(),
		e.DisplayName(),
		e.DisplayDepartment(),
		e.DisplayScore(),
	}, " / ")
}

func firstString(candidates ...*string) string {
	for _, c := range candidates {
		if c != nil && *c != "" {
			return *c
		}
	}
	return placeholder
}

func firstNumber(candidates ...*json.Number) string {
	for _, c := range candidates {
		if c != nil && c.String() != "" {
			return c.String()
		}
	}
	return placeholder
}
