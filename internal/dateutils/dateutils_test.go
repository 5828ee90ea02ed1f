package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "iso", input: "2026-03-15", want: "2026-03-15"},
		{name: "us slash", input: "03/15/2026", want: "2026-03-15"},
		{name: "us slash short year", input: "03/15/26", want: "2026-03-15"},
		{name: "single digit", input: "3/5/2026", want: "2026-03-05"},
		{name: "dotted european", input: "15.03.2026", want: "2026-03-15"},
		{name: "iso with time", input: "2026-03-15 10:22:01", want: "2026-03-15"},
		{name: "long form", input: "Mar 15, 2026", want: "2026-03-15"},
		{name: "padded whitespace", input: "  2026-03-15  ", want: "2026-03-15"},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "not a date", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ToISO(got))
		})
	}
}

func TestLastFullMonths(t *testing.T) {
	now := time.Date(2026, time.March, 17, 14, 0, 0, 0, time.UTC)

	start, end := LastFullMonths(now, 3)
	assert.Equal(t, "2025-12-01", ToISO(start))
	assert.Equal(t, "2026-03-01", ToISO(end))

	start, end = LastFullMonths(now, 1)
	assert.Equal(t, "2026-02-01", ToISO(start))
	assert.Equal(t, "2026-03-01", ToISO(end))
}

func TestMonthsSpanned(t *testing.T) {
	jan := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 3, MonthsSpanned(jan, mar))
	assert.Equal(t, 1, MonthsSpanned(jan, jan))
	assert.Equal(t, 1, MonthsSpanned(mar, jan))
	assert.Equal(t, 13, MonthsSpanned(jan, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)))
}
