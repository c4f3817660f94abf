package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/territory-cli/internal/model"
)

func fptr(v float64) *float64 { return &v }

func TestWriteResults(t *testing.T) {
	t.Parallel()

	accounts := []model.Account{
		{ID: "A1", Name: "Acme, Inc.", OriginalRep: "Alice", ARR: 5000000, NumEmployees: 1200, Location: "CA", RiskScore: fptr(85)},
		{ID: "A2", Name: "Globex", OriginalRep: "Bob", ARR: 350000.5, NumEmployees: 80, Location: "NY"},
	}
	results := []model.AllocationResult{
		{AccountID: "A1", AssignedRep: "Carol", Segment: model.SegmentEnterprise},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, accounts, results))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "Account_ID,Account_Name,Original_Rep,ARR,Num_Employees,Location,Risk_Score,Segment,Assigned_Rep", lines[0])

	// Names containing commas are quoted; large ARR stays in plain
	// decimal notation.
	assert.Equal(t, `A1,"Acme, Inc.",Alice,5000000,1200,CA,85,Enterprise,Carol`, lines[1])

	// No allocation for A2: Segment and Assigned_Rep stay empty, missing
	// risk score exports as an empty cell.
	assert.Equal(t, "A2,Globex,Bob,350000.5,80,NY,,,", lines[2])
}

func TestRowsPreserveAccountOrder(t *testing.T) {
	t.Parallel()

	accounts := []model.Account{
		{ID: "A3", Name: "Initech", OriginalRep: "Alice", ARR: 100, NumEmployees: 5, Location: "TX"},
		{ID: "A1", Name: "Acme", OriginalRep: "Bob", ARR: 200, NumEmployees: 10, Location: "CA"},
	}
	results := []model.AllocationResult{
		{AccountID: "A1", AssignedRep: "Bob", Segment: model.SegmentMidMarket},
		{AccountID: "A3", AssignedRep: "Alice", Segment: model.SegmentMidMarket},
	}

	rows := Rows(accounts, results)
	require.Len(t, rows, 2)
	assert.Equal(t, "A3", rows[0].AccountID)
	assert.Equal(t, "Alice", rows[0].AssignedRep)
	assert.Equal(t, "A1", rows[1].AccountID)
	assert.Equal(t, "Bob", rows[1].AssignedRep)
}

func TestDefaultFilename(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 28, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "territory-allocation-2026-08-28.csv", DefaultFilename(now))
}
