package writer

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-ledger/internal/config"
	"github.com/insightdelivered/statement-ledger/internal/models"
)

func repaymentTxn() models.Transaction {
	return models.Transaction{
		Date: "2024-01-10",
		Narration: models.Narration{
			Shape:   models.ShapeRepayment,
			Text:    "XXXX-00000000",
			Comment: "1 of 1 repayment",
		},
		Balance: models.Amount{Text: "900.00"},
		Postings: []models.Posting{
			{Account: "assets:funds:fundingsocieties", Sign: "-", Amount: "100.00", Comment: "Principal"},
		},
	}
}

func TestLedgerWriter_Repayment(t *testing.T) {
	var buf bytes.Buffer
	w := NewLedgerWriter(&buf, config.Default())

	require.NoError(t, w.WriteTransaction(repaymentTxn()))
	require.NoError(t, w.Flush())

	want := "2024-01-10 * XXXX-00000000  ; 1 of 1 repayment\n" +
		"\tassets:fundingsocieties\n" +
		"\tassets:funds:fundingsocieties" + strings.Repeat(" ", 17) + "-100.00 RM  ; Principal\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}

func TestLedgerWriter_AmountsRightAligned(t *testing.T) {
	var buf bytes.Buffer
	w := NewLedgerWriter(&buf, config.Default())

	txn := repaymentTxn()
	txn.Postings = append(txn.Postings,
		models.Posting{Account: "income:interest", Sign: "-", Amount: "5.10", Comment: "Interest"},
		models.Posting{Account: "expenses:service", Amount: "1,000.15"},
	)
	require.NoError(t, w.WriteTransaction(txn))
	require.NoError(t, w.Flush())

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 7)
	for _, l := range lines[2:5] {
		before, _, _ := strings.Cut(l, " RM")
		assert.Equal(t, 61, 8+len(before)-1, "line %q", l)
	}
}

func TestLedgerWriter_NoHeaderComment(t *testing.T) {
	var buf bytes.Buffer
	w := NewLedgerWriter(&buf, config.Default())

	txn := repaymentTxn()
	txn.Narration.Comment = ""
	require.NoError(t, w.WriteTransaction(txn))
	require.NoError(t, w.Flush())
	assert.True(t, strings.HasPrefix(buf.String(), "2024-01-10 * XXXX-00000000\n"))
}

func TestLedgerWriter_AssetBalance(t *testing.T) {
	cfg := config.Default()
	cfg.AssetBalance = true

	var buf bytes.Buffer
	w := NewLedgerWriter(&buf, cfg)
	require.NoError(t, w.WriteTransaction(repaymentTxn()))
	require.NoError(t, w.Flush())

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "\tassets:fundingsocieties"+strings.Repeat(" ", 22)+"= 900.00 RM", lines[1])
}

func TestLedgerWriter_Overflow(t *testing.T) {
	cfg := config.Default()
	cfg.LineWidth = 40

	var buf bytes.Buffer
	w := NewLedgerWriter(&buf, cfg)
	err := w.WriteTransaction(repaymentTxn())
	require.ErrorIs(t, err, ErrColumnOverflow)

	require.NoError(t, w.Flush())
	assert.Empty(t, buf.String())
}

func TestLedgerWriter_FlushEach(t *testing.T) {
	cfg := config.Default()

	var buf bytes.Buffer
	w := NewLedgerWriter(&buf, cfg)
	require.NoError(t, w.WriteTransaction(repaymentTxn()))
	assert.Zero(t, buf.Len())

	cfg.Debug = true
	buf.Reset()
	w = NewLedgerWriter(&buf, cfg)
	require.NoError(t, w.WriteTransaction(repaymentTxn()))
	assert.NotZero(t, buf.Len())
}

var postingLine = regexp.MustCompile(`^\t(\S+)\s{2,}(-?)(\S+) RM(?:  ; (.*))?$`)

func TestFormatter_RoundTrip(t *testing.T) {
	f := NewFormatter(config.Default())

	postings := []models.Posting{
		{Account: "assets:funds:fundingsocieties", Sign: "-", Amount: "100.00", Comment: "Principal"},
		{Account: "expenses:service", Amount: "0.15", Comment: "Service Fee"},
		{Account: "assets:bank:pbe", Sign: "-", Amount: "12,345.67"},
		{Account: "income:interest", Amount: "5.00", Comment: "Late Returns Fee"},
	}
	for _, p := range postings {
		line, err := f.Posting(p)
		require.NoError(t, err)

		m := postingLine.FindStringSubmatch(line)
		require.NotNil(t, m, "line %q", line)
		assert.Equal(t, p.Account, m[1])
		assert.Equal(t, p.Sign, m[2])
		assert.Equal(t, p.Amount, m[3])
		assert.Equal(t, p.Comment, m[4])
	}
}

func TestFormatter_WideRunes(t *testing.T) {
	f := Formatter{Indent: "    ", LineWidth: 30, Commodity: "RM"}

	line, err := f.Posting(models.Posting{Account: "資産:銀行", Amount: "1.00"})
	require.NoError(t, err)
	// 4 indent + 9 account columns + pad + 4 amount + 1
	assert.Equal(t, "    資産:銀行"+strings.Repeat(" ", 12)+"1.00 RM", line)
}

func TestNew(t *testing.T) {
	cfg := config.Default()
	var buf bytes.Buffer

	for format, want := range map[string]interface{}{
		"":     &LedgerWriter{},
		"csv":  &CSVWriter{},
		"xlsx": &XLSXWriter{},
	} {
		sink, err := New(format, &buf, cfg)
		require.NoError(t, err)
		assert.IsType(t, want, sink)
	}

	_, err := New("qif", &buf, cfg)
	assert.Error(t, err)
}

func TestLedgerWriter_MinimumPad(t *testing.T) {
	// indent 8 + account 29 + sign 1 + amount 6 + space 1 = 45 columns
	tests := []struct {
		width   int
		wantErr bool
	}{
		{45, true}, // pad 0
		{46, true}, // pad 1
		{47, false},
	}
	for _, tt := range tests {
		cfg := config.Default()
		cfg.LineWidth = tt.width

		var buf bytes.Buffer
		err := NewLedgerWriter(&buf, cfg).WriteTransaction(repaymentTxn())
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrColumnOverflow, "width %d", tt.width)
			continue
		}
		require.NoError(t, err, "width %d", tt.width)
		assert.Contains(t, buf.String(), "assets:funds:fundingsocieties  -100.00 RM")
	}
}
