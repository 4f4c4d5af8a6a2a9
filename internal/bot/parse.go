package bot

import (
	"fmt"
	"strings"

	"dosewatch/internal/form"
	"dosewatch/internal/models"
)

// parseForm builds a reminder form from the semicolon syntax:
// name; dosage; frequency; times; [start]; [end]; [notes].
// Omitted start defaults to today, matching the blank form.
func parseForm(args, editingID string) (*form.Form, error) {
	fields := strings.Split(args, ";")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < 4 {
		return nil, fmt.Errorf("expected name; dosage; frequency; times; [start]; [end]; [notes], got %d fields", len(fields))
	}
	if len(fields) > 7 {
		return nil, fmt.Errorf("too many fields: %d", len(fields))
	}

	freq, err := parseFrequency(fields[2])
	if err != nil {
		return nil, err
	}

	f := form.New()
	f.EditingID = editingID
	f.MedicineName = fields[0]
	f.Dosage = fields[1]
	f.Frequency = freq
	f.Times = parseTimes(fields[3])

	if len(fields) > 4 && fields[4] != "" {
		f.StartDate = fields[4]
	}
	if len(fields) > 5 {
		f.EndDate = fields[5]
	}
	if len(fields) > 6 {
		f.Notes = fields[6]
	}
	return f, nil
}

func parseFrequency(s string) (models.Frequency, error) {
	switch strings.ToLower(s) {
	case "daily", "once":
		return models.FrequencyDaily, nil
	case "twice-daily", "twice", "bid":
		return models.FrequencyTwiceDaily, nil
	case "three-times", "thrice", "tid":
		return models.FrequencyThreeTimes, nil
	case "weekly":
		return models.FrequencyWeekly, nil
	default:
		return "", fmt.Errorf("unknown frequency %q, use daily, twice-daily, three-times or weekly", s)
	}
}

func parseTimes(s string) []string {
	var times []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			times = append(times, t)
		}
	}
	return times
}
