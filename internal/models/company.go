package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultRevisitAfterDays is used when a create request omits the
	// revisit interval.
	DefaultRevisitAfterDays = 7
	// MinRevisitAfterDays is the smallest allowed revisit interval.
	MinRevisitAfterDays = 1
)

// Company is a careers page being tracked for periodic revisits.
type Company struct {
	ID               uuid.UUID `json:"companyId"`
	Name             string    `json:"companyName"`
	CareersURL       string    `json:"careersUrl"`
	LastVisitedOn    *Date     `json:"lastVisitedOn"`
	RevisitAfterDays int       `json:"revisitAfterDays"`
	Tags             []Tag     `json:"tags"`
	NextVisitOn      Date      `json:"nextVisitOn"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// DueFilter selects companies by where their next visit falls relative to
// the current date.
type DueFilter string

const (
	DueToday    DueFilter = "TODAY"
	DueOverdue  DueFilter = "OVERDUE"
	DueUpcoming DueFilter = "UPCOMING"
)

// ParseDueFilter parses a due filter, case-insensitively.
func ParseDueFilter(raw string) (DueFilter, error) {
	switch f := DueFilter(strings.ToUpper(strings.TrimSpace(raw))); f {
	case DueToday, DueOverdue, DueUpcoming:
		return f, nil
	default:
		return "", fmt.Errorf("invalid due filter: %q (must be TODAY, OVERDUE, or UPCOMING)", raw)
	}
}
