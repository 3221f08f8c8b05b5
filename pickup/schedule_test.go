package pickup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLoc = time.FixedZone("MYT", 8*60*60)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestSchedule(t *testing.T, now time.Time, labels ...string) *Schedule {
	t.Helper()
	s, err := NewSchedule(labels, 4*time.Hour, testLoc)
	require.NoError(t, err)
	return s.WithClock(fixedClock(now))
}

func TestParseSlot(t *testing.T) {
	testCases := []struct {
		label          string
		expectedHour   int
		expectedMinute int
		expectErr      bool
	}{
		{label: "12:00–13:00", expectedHour: 12},
		{label: "18:30-19:30", expectedHour: 18, expectedMinute: 30},
		{label: " 09:15 — 10:00 ", expectedHour: 9, expectedMinute: 15},
		{label: "07:45", expectedHour: 7, expectedMinute: 45},
		{label: "noon", expectErr: true},
		{label: "25:00–26:00", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.label, func(t *testing.T) {
			s, err := ParseSlot(tc.label)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedHour, s.Hour)
			assert.Equal(t, tc.expectedMinute, s.Minute)
		})
	}
}

func TestNewSchedule_Errors(t *testing.T) {
	_, err := NewSchedule(nil, time.Hour, testLoc)
	assert.Error(t, err)

	_, err = NewSchedule([]string{"12:00–13:00", "soon"}, time.Hour, testLoc)
	assert.Error(t, err)
}

func TestAvailable_LeadTime(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, testLoc)
	// 11:00 is now+3h, 13:00 is now+5h.
	s := newTestSchedule(t, now, "11:00–12:00", "13:00–14:00")

	available := s.Available(now)
	require.Len(t, available, 1)
	assert.Equal(t, "13:00–14:00", available[0].Label)
}

func TestAvailable_BoundaryIsExcluded(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, testLoc)
	s := newTestSchedule(t, now, "12:00–13:00")

	assert.Empty(t, s.Available(now), "now+lead equal to slot start is not strictly before it")

	s = s.WithClock(fixedClock(now.Add(-time.Minute)))
	assert.Len(t, s.Available(now), 1)
}

func TestAvailable_FutureDateKeepsAllSlots(t *testing.T) {
	now := time.Date(2024, 6, 1, 20, 0, 0, 0, testLoc)
	s := newTestSchedule(t, now, "12:00–13:00", "18:00–19:00")

	assert.Empty(t, s.Available(now))

	tomorrow, err := s.ParseDate("2024-06-02")
	require.NoError(t, err)
	assert.Len(t, s.Available(tomorrow), 2)
}

func TestReconcile(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, testLoc)
	s := newTestSchedule(t, now, "12:00–13:00", "18:00–19:00")
	today := now
	tomorrow := now.AddDate(0, 0, 1)

	testCases := []struct {
		name        string
		date        time.Time
		selected    string
		expected    string
		expectedErr error
	}{
		{name: "Still valid selection is kept", date: tomorrow, selected: "12:00–13:00", expected: "12:00–13:00"},
		{name: "Stale selection resets to first valid slot", date: today, selected: "12:00–13:00", expected: "18:00–19:00"},
		{name: "Empty selection picks first valid slot", date: tomorrow, selected: "", expected: "12:00–13:00"},
		{name: "No slots left", date: today.Add(10 * time.Hour), selected: "18:00–19:00", expectedErr: ErrNoSlots},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sched := s
			if tc.expectedErr != nil {
				sched = s.WithClock(fixedClock(tc.date))
			}
			got, err := sched.Reconcile(tc.date, tc.selected)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestValidate(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, testLoc)
	s := newTestSchedule(t, now, "12:00–13:00", "18:00–19:00")

	assert.NoError(t, s.Validate(now, "18:00–19:00"))
	assert.ErrorIs(t, s.Validate(now, "12:00–13:00"), ErrSlotUnavailable)
	assert.ErrorIs(t, s.Validate(now, "03:00–04:00"), ErrUnknownSlot)

	late := s.WithClock(fixedClock(time.Date(2024, 6, 1, 21, 0, 0, 0, testLoc)))
	assert.ErrorIs(t, late.Validate(now, "18:00–19:00"), ErrNoSlots)
}

func TestParseDate(t *testing.T) {
	s := newTestSchedule(t, time.Now(), "12:00–13:00")

	d, err := s.ParseDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, testLoc, d.Location())

	_, err = s.ParseDate("01/06/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDates(t *testing.T) {
	// 23:30 UTC on May 31st is already June 1st in MYT.
	now := time.Date(2024, 5, 31, 23, 30, 0, 0, time.UTC)
	s := newTestSchedule(t, now, "12:00–13:00")

	dates := s.Dates(3)
	require.Len(t, dates, 3)
	assert.Equal(t, "2024-06-01", dates[0].Format(DateLayout))
	assert.Equal(t, "2024-06-03", dates[2].Format(DateLayout))
}

func TestSlots_ReturnsCopy(t *testing.T) {
	s := newTestSchedule(t, time.Date(2024, 5, 31, 9, 0, 0, 0, testLoc), "12:00–13:00", "18:00–19:00")

	slots := s.Slots()
	require.Len(t, slots, 2)
	assert.Equal(t, "12:00–13:00", slots[0].Label)
	assert.Equal(t, 4*time.Hour, s.LeadTime())

	slots[0].Label = "changed"
	assert.Equal(t, "12:00–13:00", s.Slots()[0].Label)
}
