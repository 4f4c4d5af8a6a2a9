package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"dosewatch/internal/history"
	"dosewatch/internal/models"
)

func TestWriteWorkbook(t *testing.T) {
	reminders := []models.Reminder{
		{
			ID:           "r1",
			MedicineName: "Metformin",
			Dosage:       "500 mg",
			Frequency:    models.FrequencyTwiceDaily,
			Times:        []string{"08:00", "20:00"},
			StartDate:    "2026-01-15",
			IsActive:     true,
		},
		{
			ID:           "r2",
			MedicineName: "Aspirin",
			Frequency:    models.FrequencyDaily,
			Times:        []string{"09:00"},
			StartDate:    "2026-02-01",
			EndDate:      "2026-03-01",
			IsActive:     false,
		},
	}
	deliveries := []history.Entry{
		{
			Medicine:  "Metformin",
			Slot:      "08:00",
			Channel:   "telegram",
			Status:    "sent",
			CreatedAt: time.Date(2026, 3, 10, 8, 0, 5, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, reminders, deliveries))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Reminders", "Delivery History"}, f.GetSheetList())

	medicine, err := f.GetCellValue("Reminders", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Metformin", medicine)

	times, err := f.GetCellValue("Reminders", "E2")
	require.NoError(t, err)
	assert.Equal(t, "08:00, 20:00", times)

	endDate, err := f.GetCellValue("Reminders", "G2")
	require.NoError(t, err)
	assert.Equal(t, "Ongoing", endDate)

	status, err := f.GetCellValue("Reminders", "I3")
	require.NoError(t, err)
	assert.Equal(t, "Paused", status)

	channel, err := f.GetCellValue("Delivery History", "D2")
	require.NoError(t, err)
	assert.Equal(t, "telegram", channel)
}
