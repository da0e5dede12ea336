package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/therapy-scheduler/pkg/errors"
)

func may20Request(days int) RecurringRequest {
	return RecurringRequest{
		StartDate:    "2025-05-20",
		Days:         days,
		RoomID:       "r1",
		Slot:         "07:00",
		TherapistIDs: []string{"t1"},
	}
}

func TestCheckRecurring_AllAvailable(t *testing.T) {
	snap := newSnapshot(mayDates, []string{"07:00"})

	res, err := CheckRecurring(may20Request(3), snap, Policy{})
	require.NoError(t, err)

	assert.Equal(t, []Availability{
		{Date: "2025-05-20", Available: true},
		{Date: "2025-05-21", Available: true},
		{Date: "2025-05-22", Available: true},
	}, res.Days)
	assert.True(t, res.AllAvailable)
	assert.Empty(t, res.Conflicts())
}

func TestCheckRecurring_RoomBookedOnDayTwo(t *testing.T) {
	snap := newSnapshot(mayDates, []string{"07:00"},
		booking("c9", "2025-05-21", "07:00", "r1", "t4"))

	res, err := CheckRecurring(may20Request(3), snap, Policy{})
	require.NoError(t, err)

	require.Len(t, res.Days, 3)
	assert.True(t, res.Days[0].Available)
	assert.Equal(t, Availability{Date: "2025-05-21", Available: false, Reason: ReasonRoomBooked}, res.Days[1])
	assert.True(t, res.Days[2].Available)
	assert.False(t, res.AllAvailable)
	assert.Equal(t, []string{"2025-05-20", "2025-05-22"}, res.AvailableDates())
	assert.Equal(t, []ConflictRecord{{
		Date:         "2025-05-21",
		Slot:         "07:00",
		RoomID:       "r1",
		TherapistIDs: []string{"t1"},
		Reason:       ReasonRoomBooked,
	}}, res.Conflicts())
}

func TestCheckRecurring_FiveConsecutiveDates(t *testing.T) {
	snap := newSnapshot(mayDates, []string{"07:00"})

	res, err := CheckRecurring(may20Request(5), snap, Policy{NonWorkingDays: []time.Weekday{time.Friday}})
	require.NoError(t, err)

	require.Len(t, res.Days, 5)
	want := []string{"2025-05-20", "2025-05-21", "2025-05-22", "2025-05-23", "2025-05-24"}
	for i, d := range res.Days {
		assert.Equal(t, want[i], d.Date)
	}
	assert.Empty(t, res.Skipped)
	// no calendar entries exist past the 22nd
	assert.Equal(t, ReasonRoomClosed, res.Days[3].Reason)
	assert.False(t, res.AllAvailable)
}

func TestCheckRecurring_SkipsNonWorkingDays(t *testing.T) {
	dates := []string{"2025-05-22", "2025-05-23", "2025-05-24"}
	snap := newSnapshot([]string{"2025-05-22", "2025-05-24"}, []string{"07:00"})

	req := RecurringRequest{
		StartDate:          dates[0],
		Days:               3,
		RoomID:             "r1",
		Slot:               "07:00",
		TherapistIDs:       []string{"t1"},
		SkipNonWorkingDays: true,
	}
	res, err := CheckRecurring(req, snap, Policy{NonWorkingDays: []time.Weekday{time.Friday}})
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-05-23"}, res.Skipped)
	require.Len(t, res.Days, 2)
	assert.Equal(t, "2025-05-22", res.Days[0].Date)
	assert.Equal(t, "2025-05-24", res.Days[1].Date)
	assert.True(t, res.AllAvailable)
}

func TestCheckRecurring_EverySkippedDayIsVacuouslyAvailable(t *testing.T) {
	snap := newSnapshot([]string{"2025-05-22"}, []string{"07:00"})

	req := RecurringRequest{
		StartDate:          "2025-05-23",
		Days:               1,
		RoomID:             "r1",
		Slot:               "07:00",
		TherapistIDs:       []string{"t1"},
		SkipNonWorkingDays: true,
	}
	res, err := CheckRecurring(req, snap, Policy{NonWorkingDays: []time.Weekday{time.Friday}})
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-05-23"}, res.Skipped)
	assert.Empty(t, res.Days)
	assert.True(t, res.AllAvailable)
	assert.Empty(t, res.AvailableDates())
}

func TestCheckRecurring_SingleDayMatchesCheckSlot(t *testing.T) {
	snap := newSnapshot(mayDates, []string{"07:00"},
		booking("c9", "2025-05-20", "07:00", "r2", "t1"))

	res, err := CheckRecurring(may20Request(1), snap, Policy{})
	require.NoError(t, err)
	single, err := CheckSlot(SlotRequest{Date: "2025-05-20", Slot: "07:00", RoomID: "r1", TherapistIDs: []string{"t1"}}, snap, Policy{})
	require.NoError(t, err)

	require.Len(t, res.Days, 1)
	assert.Equal(t, single, res.Days[0])
	assert.Equal(t, single.Available, res.AllAvailable)
}

func TestCheckRecurring_AllAvailableIsConjunction(t *testing.T) {
	ledgers := [][]Appointment{
		nil,
		{booking("c9", "2025-05-20", "07:00", "r1", "t4")},
		{booking("c9", "2025-05-22", "07:00", "r2", "t1")},
		{booking("c9", "2025-05-21", "08:00", "r1", "t1")},
		{
			booking("c8", "2025-05-20", "07:00", "r2", "t1"),
			booking("c9", "2025-05-22", "07:00", "r1", "t2"),
		},
	}

	for i, l := range ledgers {
		snap := newSnapshot(mayDates, []string{"07:00", "08:00"}, l...)
		res, err := CheckRecurring(may20Request(3), snap, Policy{})
		require.NoError(t, err, "ledger %d", i)

		all := true
		for _, d := range res.Days {
			all = all && d.Available
		}
		assert.Equal(t, all, res.AllAvailable, "ledger %d", i)
	}
}

func TestCheckRecurring_LedgerIsNotMutated(t *testing.T) {
	snap := newSnapshot(mayDates, []string{"07:00"})

	_, err := CheckRecurring(may20Request(3), snap, Policy{})
	require.NoError(t, err)
	assert.Empty(t, snap.Ledger)
}

func TestCheckRecurring_MultiDayAppointmentBlocksSpan(t *testing.T) {
	long := booking("c9", "2025-05-20", "07:00", "r1", "t4")
	long.DurationDays = 2
	snap := newSnapshot(mayDates, []string{"07:00"}, long)

	res, err := CheckRecurring(may20Request(3), snap, Policy{})
	require.NoError(t, err)

	assert.False(t, res.Days[0].Available)
	assert.False(t, res.Days[1].Available)
	assert.True(t, res.Days[2].Available)
}

func TestCheckRecurring_InvalidRequest(t *testing.T) {
	snap := newSnapshot(mayDates, []string{"07:00"})

	tests := []struct {
		name   string
		mutate func(r *RecurringRequest)
	}{
		{"zero days", func(r *RecurringRequest) { r.Days = 0 }},
		{"negative days", func(r *RecurringRequest) { r.Days = -2 }},
		{"bad start date", func(r *RecurringRequest) { r.StartDate = "2025/05/20" }},
		{"unknown room", func(r *RecurringRequest) { r.RoomID = "nope" }},
		{"unknown therapist", func(r *RecurringRequest) { r.TherapistIDs = []string{"ghost"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := may20Request(3)
			tt.mutate(&req)
			_, err := CheckRecurring(req, snap, Policy{})
			require.Error(t, err)
			assert.True(t, apperrors.IsInvalidRequest(err))
		})
	}
}
