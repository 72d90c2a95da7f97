package mdtable

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWellFormedTable(t *testing.T) {
	md := `Here are the manufacturers I found:

| Company | Country | USDMF |
|---------|---------|-------|
| Acme Pharma | India | Yes |
| Beta Labs | China | No |

Let me know if you need more detail.`

	table := Parse(md)
	require.False(t, table.Empty())
	assert.Equal(t, []string{"company", "country", "usdmf"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 0, table.Rejected)

	assert.Equal(t, "Acme Pharma", table.Rows[0]["company"])
	assert.Equal(t, "India", table.Rows[0]["country"])
	assert.Equal(t, "Beta Labs", table.Rows[1]["company"])
}

func TestParseRoundTrip(t *testing.T) {
	const cols, rows = 4, 7
	var sb strings.Builder
	for c := 0; c < cols; c++ {
		fmt.Fprintf(&sb, "| h%d ", c)
	}
	sb.WriteString("|\n")
	sb.WriteString(strings.Repeat("|---", cols) + "|\n")
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			fmt.Fprintf(&sb, "| v%d-%d ", r, c)
		}
		sb.WriteString("|\n")
	}

	table := Parse(sb.String())
	require.Len(t, table.Rows, rows)
	for r, row := range table.Rows {
		require.Len(t, row, cols)
		for c := 0; c < cols; c++ {
			assert.Equal(t, fmt.Sprintf("v%d-%d", r, c), row[fmt.Sprintf("h%d", c)])
		}
	}
	assert.Equal(t, 0, table.Rejected)
}

func TestParseRaggedRowIsolation(t *testing.T) {
	md := `| Company | Country |
|---|---|
| Acme | India |
| Broken Row |
| Beta | China |`

	table := Parse(md)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 1, table.Rejected)
	assert.Equal(t, "Acme", table.Rows[0]["company"])
	assert.Equal(t, "Beta", table.Rows[1]["company"])
}

func TestParseNoTable(t *testing.T) {
	table := Parse("No manufacturers could be verified for this compound.")
	assert.True(t, table.Empty())
	assert.Empty(t, table.Headers)
	assert.Equal(t, 0, table.Rejected)
}

func TestParseSingleLineIsNotATable(t *testing.T) {
	table := Parse("| just | one | line |")
	assert.True(t, table.Empty())
}

func TestParseSkipsCodeFences(t *testing.T) {
	md := "```markdown\n| Company | Country |\n|---|---|\n| Acme | India |\n```\n"
	table := Parse(md)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Acme", table.Rows[0]["company"])
}

func TestParseToleratesBlankLinesInsideTable(t *testing.T) {
	md := `| Company | Country |
|---|---|
| Acme | India |

| Beta | China |`
	table := Parse(md)
	require.Len(t, table.Rows, 2)
}

func TestParseStopsAtProseAfterTable(t *testing.T) {
	md := `| Company | Country |
|---|---|
| Acme | India |
These results were verified manually.
| Orphan | Line |`
	table := Parse(md)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Acme", table.Rows[0]["company"])
}

func TestCanonicalKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Company", "company"},
		{"  Confidence (%)  ", "confidence"},
		{"Verification Source", "verification_source"},
		{"USDMF", "usdmf"},
		{"Additional Info", "additional_info"},
		{"URL", "url"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalKey(tt.in))
		})
	}
}
