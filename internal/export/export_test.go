package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"reportingest/internal/domain"
)

func strPtr(s string) *string { return &s }

var createdAt = time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

func sampleReports() []domain.ReportDocument {
	return []domain.ReportDocument{
		{
			ID:        uuid.MustParse("11111111-1111-1111-1111-111111111111"),
			Type:      domain.ReportTypeChiusuraPOS,
			ImagePath: "uploads/a.jpg",
			ImageURL:  "https://img/a.jpg",
			CreatedAt: createdAt,
			Fields: &domain.ChiusuraPOSFields{
				Data:        strPtr("2024-03-01"),
				Ora:         strPtr("22:15"),
				Totale:      150.5,
				NomeAzienda: strPtr("Bar Sport"),
			},
		},
		{
			ID:             uuid.MustParse("22222222-2222-2222-2222-222222222222"),
			Type:           domain.ReportTypeNovolineRange,
			ImagePath:      "uploads/b.jpg",
			ConversationID: strPtr("conv-1"),
			CreatedAt:      createdAt,
			Fields: &domain.NovolineRangeFields{
				Data:   strPtr("2024-02-01"),
				From:   strPtr("2024-02-01"),
				To:     strPtr("2024-02-07"),
				Totale: 40,
				VLT:    []domain.VLTRecord{{"totalNetWin": 50.0}, {"totalNetWin": -10.0}},
			},
		},
		{
			ID:        uuid.MustParse("33333333-3333-3333-3333-333333333333"),
			Type:      "altro",
			CreatedAt: createdAt,
			Fields:    &domain.UnknownFields{RawArgs: json.RawMessage(`{"x":1}`)},
		},
	}
}

func TestCSVWriter_HeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteReports(sampleReports()))
	w.Flush()
	require.NoError(t, w.Error())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Len(t, rows[0], len(columns))
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "Created At", rows[0][12])

	pos := rows[1]
	assert.Equal(t, "chiusura_pos", pos[1])
	assert.Equal(t, "2024-03-01", pos[2])
	assert.Equal(t, "22:15", pos[3])
	assert.Equal(t, "150.50", pos[6])
	assert.Equal(t, "Bar Sport", pos[7])
	assert.Equal(t, "", pos[8])
	assert.Equal(t, "2024-03-01T10:30:00Z", pos[12])

	novoline := rows[2]
	assert.Equal(t, "2024-02-01", novoline[4])
	assert.Equal(t, "2024-02-07", novoline[5])
	assert.Equal(t, "40.00", novoline[6])
	assert.Equal(t, "2", novoline[8])
	assert.Equal(t, "conv-1", novoline[11])

	unknown := rows[3]
	assert.Equal(t, "altro", unknown[1])
	assert.Equal(t, "", unknown[6])
}

func TestXLSXWriter_RoundTrip(t *testing.T) {
	w, err := NewXLSXWriter()
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteReports(sampleReports()))

	var buf bytes.Buffer
	_, err = w.WriteTo(&buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Type", rows[0][1])
	assert.Equal(t, "chiusura_pos", rows[1][1])
	assert.Equal(t, "150.5", rows[1][6])
	assert.Equal(t, "Bar Sport", rows[1][7])
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}

func TestBuildFilename(t *testing.T) {
	now := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "chiusura_pos_2024-05-02.csv", BuildFilename("chiusura_pos", FormatCSV, now))
	assert.Equal(t, "reports_2024-05-02.xlsx", BuildFilename("", FormatXLSX, now))
	assert.Equal(t, "a_b_2024-05-02.csv", BuildFilename("a / b", FormatCSV, now))
}
