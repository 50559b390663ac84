package model

import "fmt"

// Severity grades a lint issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue codes reported by Lint.
const (
	IssueEmptyName        = "empty-name"
	IssueDuplicateName    = "duplicate-name"
	IssueNegativeMin      = "negative-min-occurs"
	IssueInvalidMax       = "invalid-max-occurs"
	IssueMaxBelowMin      = "max-below-min"
	IssueArrayCardinality = "array-cardinality"
	IssueChildrenOnLeaf   = "children-on-leaf"
)

// Issue is a single finding reported by Lint.
type Issue struct {
	Path     Path     `json:"path"`
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s [%s] %s: %s", i.Path, i.Severity, i.Code, i.Message)
}

// Lint inspects the tree for cardinality and naming problems. It never
// modifies the tree; the mutation operations deliberately accept any of these
// states so forms can hold intermediate values while the user types.
func Lint(fields []Field) []Issue {
	var issues []Issue
	lintSiblings(fields, nil, &issues)
	return issues
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

func lintSiblings(fields []Field, prefix Path, issues *[]Issue) {
	seen := make(map[string]int, len(fields))
	for i, field := range fields {
		path := prefix.Child(i)
		report := func(code string, severity Severity, format string, args ...any) {
			*issues = append(*issues, Issue{
				Path:     path,
				Code:     code,
				Severity: severity,
				Message:  fmt.Sprintf(format, args...),
			})
		}

		if field.Name == "" {
			report(IssueEmptyName, SeverityWarning, "field has no name")
		} else if first, dup := seen[field.Name]; dup {
			report(IssueDuplicateName, SeverityWarning, "name %q already used by sibling %d", field.Name, first)
		} else {
			seen[field.Name] = i
		}

		if field.MinOccurs < 0 {
			report(IssueNegativeMin, SeverityError, "minOccurs %d is negative", field.MinOccurs)
		}
		switch {
		case !field.MaxOccurs.Valid():
			report(IssueInvalidMax, SeverityError, "maxOccurs %s must be >= 1 or unbounded", field.MaxOccurs)
		case !field.MaxOccurs.IsUnbounded() && int(field.MaxOccurs) < field.MinOccurs:
			report(IssueMaxBelowMin, SeverityError, "maxOccurs %s is below minOccurs %d", field.MaxOccurs, field.MinOccurs)
		}
		if field.MaxOccurs.Many() && field.Type != FieldTypeArray {
			report(IssueArrayCardinality, SeverityWarning, "maxOccurs %s requires type array, found %s", field.MaxOccurs, field.Type)
		}
		if field.HasChildren() && !field.IsComplexType && !field.Type.Composite() {
			report(IssueChildrenOnLeaf, SeverityWarning, "field of type %s has %d children but is not complex", field.Type, len(field.Children))
		}

		lintSiblings(field.Children, path, issues)
	}
}
