// Package validate applies business-rule checks to rep and account data
// before allocation: duplicate detection, numeric range checks, and
// cross-file consistency.
package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sells-group/territory-cli/internal/model"
)

// Severity classifies an issue as blocking or advisory.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single validation finding. Row numbers are 1-based file
// positions (first data row is 2); zero means the issue is not tied to a
// specific row.
type Issue struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Row      int      `json:"row,omitempty"`
	Column   string   `json:"column,omitempty"`
	Value    string   `json:"value,omitempty"`
}

// Result collects the findings of one validation pass. Warnings never
// block processing; errors do.
type Result struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// Valid reports whether the pass produced no hard errors.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Merge folds another result into this one.
func (r *Result) Merge(other Result) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

func (r *Result) errorf(issue Issue) {
	issue.Severity = SeverityError
	r.Errors = append(r.Errors, issue)
}

func (r *Result) warnf(issue Issue) {
	issue.Severity = SeverityWarning
	r.Warnings = append(r.Warnings, issue)
}

// Reps validates a rep list. Duplicate names (case-insensitive) and
// invalid segments are hard errors; inconsistent location capitalization
// is a warning because geo matching compares case-insensitively but
// shared spellings are still easier to audit.
func Reps(reps []model.Rep) Result {
	var res Result

	if len(reps) == 0 {
		res.errorf(Issue{Message: "no reps found in input file"})
		return res
	}

	checkDuplicates(&res, "Rep_Name", len(reps), func(i int) string { return reps[i].Name })

	for i, rep := range reps {
		if !rep.Segment.Valid() {
			res.errorf(Issue{
				Message: fmt.Sprintf("invalid Segment value %q: must be \"Enterprise\" or \"Mid Market\"", rep.Segment),
				Row:     i + 2,
				Column:  "Segment",
				Value:   string(rep.Segment),
			})
		}
	}

	checkLocationFormats(&res, len(reps), func(i int) string { return reps[i].Location })

	return res
}

// Accounts validates an account list. Duplicate IDs and negative numeric
// fields are hard errors; a risk score outside 0-100 is a warning.
func Accounts(accounts []model.Account) Result {
	var res Result

	if len(accounts) == 0 {
		res.errorf(Issue{Message: "no accounts found in input file"})
		return res
	}

	checkDuplicates(&res, "Account_ID", len(accounts), func(i int) string { return accounts[i].ID })

	for i, account := range accounts {
		rowNum := i + 2

		if account.ARR < 0 {
			res.errorf(Issue{
				Message: fmt.Sprintf("ARR must be positive: %v", account.ARR),
				Row:     rowNum,
				Column:  "ARR",
				Value:   strconv.FormatFloat(account.ARR, 'f', -1, 64),
			})
		}

		if account.NumEmployees < 0 {
			res.errorf(Issue{
				Message: fmt.Sprintf("Num_Employees must be positive: %d", account.NumEmployees),
				Row:     rowNum,
				Column:  "Num_Employees",
				Value:   strconv.Itoa(account.NumEmployees),
			})
		}

		if account.RiskScore != nil && (*account.RiskScore < 0 || *account.RiskScore > 100) {
			res.warnf(Issue{
				Message: fmt.Sprintf("Risk_Score out of expected range (0-100): %v", *account.RiskScore),
				Row:     rowNum,
				Column:  "Risk_Score",
				Value:   strconv.FormatFloat(*account.RiskScore, 'f', -1, 64),
			})
		}
	}

	checkLocationFormats(&res, len(accounts), func(i int) string { return accounts[i].Location })

	return res
}

// Consistency cross-checks reps against accounts: accounts whose
// Original_Rep is unknown, and reps no account references. Both are
// warnings since the allocator handles either case.
func Consistency(reps []model.Rep, accounts []model.Account) Result {
	var res Result

	repNames := make(map[string]bool, len(reps))
	for _, rep := range reps {
		repNames[normalize(rep.Name)] = true
	}

	referenced := make(map[string]bool, len(accounts))
	for i, account := range accounts {
		key := normalize(account.OriginalRep)
		referenced[key] = true

		if !repNames[key] {
			res.warnf(Issue{
				Message: fmt.Sprintf("account %q references Original_Rep %q which is not found in the reps list", account.Name, account.OriginalRep),
				Row:     i + 2,
				Column:  "Original_Rep",
				Value:   account.OriginalRep,
			})
		}
	}

	var orphans []string
	for _, rep := range reps {
		if !referenced[normalize(rep.Name)] {
			orphans = append(orphans, rep.Name)
		}
	}
	if len(orphans) > 0 {
		res.warnf(Issue{
			Message: fmt.Sprintf("%d rep(s) not referenced in any account: %s. These reps start the allocation with no current book.", len(orphans), strings.Join(orphans, ", ")),
			Column:  "Rep_Name",
		})
	}

	return res
}

// All runs every check and merges the results.
func All(reps []model.Rep, accounts []model.Account) Result {
	res := Reps(reps)
	res.Merge(Accounts(accounts))
	res.Merge(Consistency(reps, accounts))
	return res
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// checkDuplicates flags values appearing more than once, case-insensitive,
// reporting the 1-based file rows involved. Output order follows first
// appearance in the input, not map order.
func checkDuplicates(res *Result, column string, n int, value func(int) string) {
	rowsByKey := make(map[string][]int, n)
	var order []string
	for i := 0; i < n; i++ {
		key := normalize(value(i))
		if _, seen := rowsByKey[key]; !seen {
			order = append(order, key)
		}
		rowsByKey[key] = append(rowsByKey[key], i+2)
	}
	for _, key := range order {
		rows := rowsByKey[key]
		if len(rows) < 2 {
			continue
		}
		res.errorf(Issue{
			Message: fmt.Sprintf("duplicate %s %q found in rows: %s", column, key, joinInts(rows)),
			Column:  column,
			Value:   key,
		})
	}
}

// checkLocationFormats warns when the same location appears under
// different capitalizations.
func checkLocationFormats(res *Result, n int, location func(int) string) {
	formsByKey := make(map[string][]string, n)
	var order []string
	for i := 0; i < n; i++ {
		loc := location(i)
		key := normalize(loc)
		forms := formsByKey[key]
		if forms == nil {
			order = append(order, key)
		}
		if !contains(forms, loc) {
			formsByKey[key] = append(forms, loc)
		}
	}
	for _, key := range order {
		forms := formsByKey[key]
		if len(forms) < 2 {
			continue
		}
		res.warnf(Issue{
			Message: fmt.Sprintf("inconsistent location format detected: %s. Geo matching is case-insensitive but spellings should agree.", strings.Join(forms, ", ")),
			Column:  "Location",
		})
	}
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
