// Package export writes allocation results as CSV: every original account
// column plus the computed Segment and Assigned_Rep columns.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/territory-cli/internal/model"
)

// plainFloat marshals without exponent notation so ARR values stay
// readable in spreadsheets.
type plainFloat float64

func (f plainFloat) MarshalCSV() ([]byte, error) {
	return strconv.AppendFloat(nil, float64(f), 'f', -1, 64), nil
}

// Row is one exported account. Accounts the allocator never assigned
// (for example when their segment had no reps) carry empty Segment and
// Assigned_Rep cells.
type Row struct {
	AccountID    string      `csv:"Account_ID"`
	AccountName  string      `csv:"Account_Name"`
	OriginalRep  string      `csv:"Original_Rep"`
	ARR          plainFloat  `csv:"ARR"`
	NumEmployees int         `csv:"Num_Employees"`
	Location     string      `csv:"Location"`
	RiskScore    *plainFloat `csv:"Risk_Score"`
	Segment      string      `csv:"Segment"`
	AssignedRep  string      `csv:"Assigned_Rep"`
}

// Rows joins accounts with their allocation results, preserving the
// account input order.
func Rows(accounts []model.Account, results []model.AllocationResult) []Row {
	byAccount := make(map[string]model.AllocationResult, len(results))
	for _, r := range results {
		byAccount[r.AccountID] = r
	}

	rows := make([]Row, 0, len(accounts))
	for _, account := range accounts {
		row := Row{
			AccountID:    account.ID,
			AccountName:  account.Name,
			OriginalRep:  account.OriginalRep,
			ARR:          plainFloat(account.ARR),
			NumEmployees: account.NumEmployees,
			Location:     account.Location,
		}
		if account.RiskScore != nil {
			risk := plainFloat(*account.RiskScore)
			row.RiskScore = &risk
		}
		if result, ok := byAccount[account.ID]; ok {
			row.Segment = string(result.Segment)
			row.AssignedRep = result.AssignedRep
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteResults writes the joined rows as CSV, header included.
func WriteResults(w io.Writer, accounts []model.Account, results []model.AllocationResult) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	for _, row := range Rows(accounts, results) {
		if err := enc.Encode(row); err != nil {
			return eris.Wrap(err, "export: encode row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return nil
}

// DefaultFilename returns the conventional export name for a run date,
// e.g. "territory-allocation-2026-08-28.csv".
func DefaultFilename(now time.Time) string {
	return "territory-allocation-" + now.Format("2006-01-02") + ".csv"
}
