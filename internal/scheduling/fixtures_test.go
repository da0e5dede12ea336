package scheduling

var (
	amira = Therapist{ID: "t1", Name: "Amira", Gender: GenderFemale}
	bilal = Therapist{ID: "t2", Name: "Bilal", Gender: GenderMale}
	carla = Therapist{ID: "t3", Name: "Carla", Gender: GenderFemale}
	dan   = Therapist{ID: "t4", Name: "Dan", Gender: GenderMale}

	roomOne = Room{ID: "r1", Name: "Room 1"}
	roomTwo = Room{ID: "r2", Name: "Room 2"}
)

// newSnapshot opens every room and therapist for slots on each of dates.
func newSnapshot(dates []string, slots []string, ledger ...Appointment) Snapshot {
	dir := Directory{
		Therapists: []Therapist{amira, bilal, carla, dan},
		Rooms:      []Room{roomOne, roomTwo},
	}
	cals := NewCalendars()
	for _, d := range dates {
		for _, r := range dir.Rooms {
			cals.Rooms.Add(r.ID, d, slots...)
		}
		for _, t := range dir.Therapists {
			cals.Therapists.Add(t.ID, d, slots...)
		}
	}
	return Snapshot{Directory: dir, Calendars: cals, Ledger: Ledger(ledger)}
}

func booking(clientID, date, slot, roomID string, therapistIDs ...string) Appointment {
	return Appointment{
		ID:           AppointmentID(clientID, therapistIDs, roomID, date, slot),
		Date:         date,
		Slot:         slot,
		RoomID:       roomID,
		TherapistIDs: therapistIDs,
		ClientID:     clientID,
		Tab:          TabTherapy,
	}
}

var mayDates = []string{"2025-05-20", "2025-05-21", "2025-05-22"}
