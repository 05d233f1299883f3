package models

// ChecklistCompany is a company as projected onto a day's checklist.
// InChecklist distinguishes companies shown because an entry already exists
// for the date from companies shown only because they are due.
type ChecklistCompany struct {
	Company
	Completed   bool `json:"completed"`
	InChecklist bool `json:"inChecklist"`
}
