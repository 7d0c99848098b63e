package writer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

func TestCSVWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf, "RM")

	txn := repaymentTxn()
	txn.Postings = append(txn.Postings, models.Posting{Account: "expenses:service", Amount: "1,000.15", Comment: "Service Fee"})
	require.NoError(t, w.WriteTransaction(txn))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Narration,Account,Amount,Commodity,Comment", lines[0])
	assert.Equal(t, "2024-01-10,XXXX-00000000,assets:funds:fundingsocieties,-100.00,RM,Principal", lines[1])
	assert.Equal(t, `2024-01-10,XXXX-00000000,expenses:service,"1,000.15",RM,Service Fee`, lines[2])
}

func TestCSVWriter_WriteNoHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf, "RM")
	w.IncludeHeader = false

	require.NoError(t, w.WriteTransaction(repaymentTxn()))
	require.NoError(t, w.Flush())

	assert.NotContains(t, buf.String(), "Date,Narration")
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestCSVWriter_EmptyStatement(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf, "RM")
	require.NoError(t, w.Flush())
	assert.Equal(t, "Date,Narration,Account,Amount,Commodity,Comment\n", buf.String())
}
