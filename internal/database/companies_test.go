package database

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/jobwatch/jobwatch/internal/models"
)

func TestBuildCompanyWhere(t *testing.T) {
	t.Parallel()

	nextVisit := models.NewDate(2026, time.September, 1)
	lastVisited := models.NewDate(2026, time.August, 20)

	tests := []struct {
		name         string
		filter       CompanyFilter
		wantArgs     int
		wantContains []string
		wantAbsent   []string
	}{
		{
			name:         "empty filter",
			filter:       CompanyFilter{},
			wantArgs:     0,
			wantContains: []string{"WHERE 1=1"},
			wantAbsent:   []string{"ILIKE", "tag_key", "CURRENT_DATE"},
		},
		{
			name:         "name prefix",
			filter:       CompanyFilter{NamePrefix: "Acme"},
			wantArgs:     1,
			wantContains: []string{`c.company_name ILIKE $1 ESCAPE '\'`},
		},
		{
			name:         "tag keys",
			filter:       CompanyFilter{TagKeys: []string{"bigtech", "remote"}},
			wantArgs:     1,
			wantContains: []string{"t2.tag_key = ANY($1)"},
		},
		{
			name:         "due today",
			filter:       CompanyFilter{Due: models.DueToday},
			wantArgs:     0,
			wantContains: []string{"= CURRENT_DATE"},
		},
		{
			name:         "due overdue",
			filter:       CompanyFilter{Due: models.DueOverdue},
			wantArgs:     0,
			wantContains: []string{"< CURRENT_DATE"},
		},
		{
			name:         "due upcoming",
			filter:       CompanyFilter{Due: models.DueUpcoming},
			wantArgs:     0,
			wantContains: []string{"> CURRENT_DATE"},
		},
		{
			name:         "explicit next visit date wins over due",
			filter:       CompanyFilter{Due: models.DueOverdue, NextVisitOn: &nextVisit},
			wantArgs:     1,
			wantContains: []string{"= $1"},
			wantAbsent:   []string{"< CURRENT_DATE"},
		},
		{
			name:         "last visited date",
			filter:       CompanyFilter{LastVisitedOn: &lastVisited},
			wantArgs:     1,
			wantContains: []string{"c.last_visited_on = $1"},
		},
		{
			name:     "all filters number placeholders in order",
			filter:   CompanyFilter{NamePrefix: "Acme", TagKeys: []string{"remote"}, NextVisitOn: &nextVisit, LastVisitedOn: &lastVisited},
			wantArgs: 4,
			wantContains: []string{
				"ILIKE $1",
				"ANY($2)",
				"= $3",
				"c.last_visited_on = $4",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			where, args := buildCompanyWhere(tt.filter)
			if len(args) != tt.wantArgs {
				t.Errorf("Expected %d args, got %d", tt.wantArgs, len(args))
			}
			for _, fragment := range tt.wantContains {
				if !strings.Contains(where, fragment) {
					t.Errorf("Expected WHERE to contain %q, got:\n%s", fragment, where)
				}
			}
			for _, fragment := range tt.wantAbsent {
				if strings.Contains(where, fragment) {
					t.Errorf("Expected WHERE to not contain %q, got:\n%s", fragment, where)
				}
			}
		})
	}
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"Acme", "Acme"},
		{"100%", `100\%`},
		{"a_b", `a\_b`},
		{`back\slash`, `back\\slash`},
		{`%_\`, `\%\_\\`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := escapeLike(tt.input); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestZipTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		keys  []string
		names []string
		want  []models.Tag
	}{
		{
			name: "empty",
			want: []models.Tag{},
		},
		{
			name:  "matched pairs",
			keys:  []string{"bigtech", "remote"},
			names: []string{"Big Tech", "Remote"},
			want: []models.Tag{
				{Key: "bigtech", Name: "Big Tech"},
				{Key: "remote", Name: "Remote"},
			},
		},
		{
			name: "missing name falls back to key",
			keys: []string{"bigtech"},
			want: []models.Tag{{Key: "bigtech", Name: "bigtech"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := zipTags(tt.keys, tt.names)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	unique := &pq.Error{Code: "23505"}
	if !isUniqueViolation(unique) {
		t.Error("Expected 23505 to be a unique violation")
	}
	if !isUniqueViolation(fmt.Errorf("insert: %w", unique)) {
		t.Error("Expected wrapped 23505 to be a unique violation")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Error("Expected foreign key violation to not match")
	}
	if isUniqueViolation(errors.New("plain")) {
		t.Error("Expected plain error to not match")
	}
}
