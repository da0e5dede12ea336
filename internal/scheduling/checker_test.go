package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/therapy-scheduler/pkg/errors"
)

func TestCheckSlot_Available(t *testing.T) {
	snap := newSnapshot(mayDates, []string{"07:00"})

	got, err := CheckSlot(SlotRequest{Date: "2025-05-20", Slot: "07:00", RoomID: "r1", TherapistIDs: []string{"t1"}}, snap, Policy{})
	require.NoError(t, err)
	assert.Equal(t, Availability{Date: "2025-05-20", Available: true}, got)
}

func TestCheckSlot_Reasons(t *testing.T) {
	req := SlotRequest{Date: "2025-05-20", Slot: "07:00", RoomID: "r1", TherapistIDs: []string{"t1", "t3"}}

	tests := []struct {
		name   string
		setup  func(s *Snapshot)
		policy Policy
		want   Reason
	}{
		{
			name: "room has no calendar entry for the date",
			setup: func(s *Snapshot) {
				delete(s.Calendars.Rooms["r1"], "2025-05-20")
			},
			want: ReasonRoomClosed,
		},
		{
			name: "second therapist closed",
			setup: func(s *Snapshot) {
				s.Calendars.Therapists["t3"]["2025-05-20"] = []string{"08:00"}
			},
			want: ReasonTherapistUnavailable,
		},
		{
			name: "room taken by another client",
			setup: func(s *Snapshot) {
				s.Ledger = Ledger{booking("c9", "2025-05-20", "07:00", "r1", "t4")}
			},
			want: ReasonRoomBooked,
		},
		{
			name: "therapist taken in another room",
			setup: func(s *Snapshot) {
				s.Ledger = Ledger{booking("c9", "2025-05-20", "07:00", "r2", "t3")}
			},
			want: ReasonTherapistBooked,
		},
		{
			name:   "no therapist matches client gender",
			policy: Policy{EnforceGenderMatch: true, ClientGender: GenderMale},
			want:   ReasonGenderMismatch,
		},
		{
			name: "room closed wins over therapist booked",
			setup: func(s *Snapshot) {
				delete(s.Calendars.Rooms, "r1")
				s.Ledger = Ledger{booking("c9", "2025-05-20", "07:00", "r2", "t1")}
			},
			want: ReasonRoomClosed,
		},
		{
			name: "room booked wins over therapist booked and gender",
			setup: func(s *Snapshot) {
				s.Ledger = Ledger{booking("c9", "2025-05-20", "07:00", "r1", "t1")}
			},
			policy: Policy{EnforceGenderMatch: true, ClientGender: GenderMale},
			want:   ReasonRoomBooked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := newSnapshot(mayDates, []string{"07:00"})
			if tt.setup != nil {
				tt.setup(&snap)
			}

			got, err := CheckSlot(req, snap, tt.policy)
			require.NoError(t, err)
			assert.False(t, got.Available)
			assert.Equal(t, tt.want, got.Reason)
		})
	}
}

func TestCheckSlot_BookingOnOtherSlotDoesNotConflict(t *testing.T) {
	snap := newSnapshot(mayDates, []string{"07:00", "08:00"},
		booking("c9", "2025-05-20", "08:00", "r1", "t1"))

	got, err := CheckSlot(SlotRequest{Date: "2025-05-20", Slot: "07:00", RoomID: "r1", TherapistIDs: []string{"t1"}}, snap, Policy{})
	require.NoError(t, err)
	assert.True(t, got.Available)
}

func TestCheckSlot_GenderPolicy(t *testing.T) {
	snap := newSnapshot(mayDates, []string{"07:00"})
	req := SlotRequest{Date: "2025-05-20", Slot: "07:00", RoomID: "r1", TherapistIDs: []string{"t2"}}

	tests := []struct {
		name      string
		policy    Policy
		available bool
	}{
		{"enforced and mismatched", Policy{EnforceGenderMatch: true, ClientGender: GenderFemale}, false},
		{"enforced and matched", Policy{EnforceGenderMatch: true, ClientGender: GenderMale}, true},
		{"enforced with unknown client gender", Policy{EnforceGenderMatch: true}, true},
		{"not enforced", Policy{ClientGender: GenderFemale}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckSlot(req, snap, tt.policy)
			require.NoError(t, err)
			assert.Equal(t, tt.available, got.Available)
			if !tt.available {
				assert.Equal(t, ReasonGenderMismatch, got.Reason)
			}
		})
	}
}

func TestCheckSlot_MixedTherapistsSatisfyGender(t *testing.T) {
	snap := newSnapshot(mayDates, []string{"07:00"})
	policy := Policy{EnforceGenderMatch: true, ClientGender: GenderFemale}

	got, err := CheckSlot(SlotRequest{Date: "2025-05-20", Slot: "07:00", RoomID: "r1", TherapistIDs: []string{"t2", "t1"}}, snap, policy)
	require.NoError(t, err)
	assert.True(t, got.Available)
}

func TestCheckSlot_InvalidRequest(t *testing.T) {
	snap := newSnapshot(mayDates, []string{"07:00"})

	tests := []struct {
		name string
		req  SlotRequest
	}{
		{"malformed date", SlotRequest{Date: "20-05-2025", Slot: "07:00", RoomID: "r1", TherapistIDs: []string{"t1"}}},
		{"malformed slot", SlotRequest{Date: "2025-05-20", Slot: "7am", RoomID: "r1", TherapistIDs: []string{"t1"}}},
		{"unknown room", SlotRequest{Date: "2025-05-20", Slot: "07:00", RoomID: "r9", TherapistIDs: []string{"t1"}}},
		{"unknown therapist", SlotRequest{Date: "2025-05-20", Slot: "07:00", RoomID: "r1", TherapistIDs: []string{"t1", "t9"}}},
		{"no therapists", SlotRequest{Date: "2025-05-20", Slot: "07:00", RoomID: "r1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CheckSlot(tt.req, snap, Policy{})
			require.Error(t, err)
			assert.True(t, apperrors.IsInvalidRequest(err), "got %v", err)
		})
	}
}

func TestCheckSlot_Idempotent(t *testing.T) {
	snap := newSnapshot(mayDates, []string{"07:00"},
		booking("c9", "2025-05-21", "07:00", "r1", "t4"))
	policy := Policy{EnforceGenderMatch: true, ClientGender: GenderFemale}

	for _, date := range mayDates {
		req := SlotRequest{Date: date, Slot: "07:00", RoomID: "r1", TherapistIDs: []string{"t1"}}
		first, err := CheckSlot(req, snap, policy)
		require.NoError(t, err)
		second, err := CheckSlot(req, snap, policy)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestReasonPriorityOrder(t *testing.T) {
	assert.Equal(t, []Reason{
		"room closed",
		"therapist unavailable",
		"room booked",
		"therapist booked",
		"gender mismatch",
	}, ReasonPriority)
}
