package timeslot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "canonical morning", input: "9:00 AM", want: 9 * 60},
		{name: "canonical afternoon", input: "3:30 PM", want: 15*60 + 30},
		{name: "zero padded", input: "09:00 AM", want: 9 * 60},
		{name: "lowercase meridiem", input: "9:00 am", want: 9 * 60},
		{name: "extra spacing", input: "  9:00   AM ", want: 9 * 60},
		{name: "24 hour form", input: "15:30", want: 15*60 + 30},
		{name: "midnight", input: "12:00 AM", want: 0},
		{name: "noon", input: "12:00 PM", want: 12 * 60},
		{name: "garbage", input: "half past nine", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "out of range hour", input: "25:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "09:00 AM", want: "9:00 AM"},
		{input: "15:30", want: "3:30 PM"},
		{input: "9:00 am", want: "9:00 AM"},
		{input: "12:00 PM", want: "12:00 PM"},
		{input: "00:15", want: "12:15 AM"},
	}

	for _, tt := range tests {
		got, err := Normalize(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	// Normalizing an already-canonical string must be the identity.
	for _, s := range []string{"6:00 AM", "11:59 AM", "12:00 PM", "5:59 PM", "10:30 PM"} {
		got, err := Normalize(s)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestDuration(t *testing.T) {
	d, err := Duration("9:00 AM", "11:30 AM")
	require.NoError(t, err)
	assert.Equal(t, 150, d)

	_, err = Duration("2:00 PM", "2:00 PM")
	assert.Error(t, err, "zero-length slot")

	_, err = Duration("2:00 PM", "9:00 AM")
	assert.Error(t, err, "end before start")
}

func TestBucket(t *testing.T) {
	tests := []struct {
		start string
		want  model.TimeOfDay
	}{
		{start: "6:00 AM", want: model.TimeOfDayMorning},
		{start: "11:59 AM", want: model.TimeOfDayMorning},
		{start: "12:00 PM", want: model.TimeOfDayAfternoon},
		{start: "5:59 PM", want: model.TimeOfDayAfternoon},
		{start: "6:00 PM", want: model.TimeOfDayEvening},
		{start: "11:00 PM", want: model.TimeOfDayEvening},
		{start: "5:59 AM", want: model.TimeOfDayEvening},
		{start: "12:00 AM", want: model.TimeOfDayEvening},
	}

	for _, tt := range tests {
		mins, err := Parse(tt.start)
		require.NoError(t, err, tt.start)
		assert.Equal(t, tt.want, Bucket(mins), tt.start)
	}
}

func TestOverlaps(t *testing.T) {
	nine, _ := Parse("9:00 AM")
	eleven, _ := Parse("11:00 AM")
	ten, _ := Parse("10:00 AM")
	noon, _ := Parse("12:00 PM")

	assert.True(t, Overlaps(nine, eleven, ten, noon), "partial overlap")
	assert.True(t, Overlaps(ten, noon, nine, eleven), "partial overlap reversed")
	assert.True(t, Overlaps(nine, noon, ten, eleven), "containment")
	assert.False(t, Overlaps(nine, ten, ten, noon), "back to back")
	assert.False(t, Overlaps(ten, noon, nine, ten), "back to back reversed")
	assert.False(t, Overlaps(nine, ten, eleven, noon), "disjoint")
}
