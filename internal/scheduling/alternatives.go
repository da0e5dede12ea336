package scheduling

// DefaultAlternativesLimit caps FindAlternatives when no limit is given.
const DefaultAlternativesLimit = 5

// AlternativeReason tags why a substitute was offered. Ranked in declaration
// order.
type AlternativeReason string

const (
	AltSameTherapist AlternativeReason = "same therapist"
	AltSameGender    AlternativeReason = "same gender"
	AltOther         AlternativeReason = "other"
)

// ConflictRecord is a day on which the requested combination could not be
// booked.
type ConflictRecord struct {
	Date         string   `json:"date"`
	Slot         string   `json:"slot"`
	RoomID       string   `json:"room_id"`
	TherapistIDs []string `json:"therapist_ids"`
	Reason       Reason   `json:"reason,omitempty"`
}

type AlternativeSlot struct {
	RoomID      string            `json:"room_id"`
	Slot        string            `json:"slot"`
	TherapistID string            `json:"therapist_id"`
	Reason      AlternativeReason `json:"reason"`
}

// FindAlternatives searches the conflict date for bookable (room, slot,
// therapist) triples. Candidates reusing a requested therapist come first,
// then therapists of the intended gender, then everyone else; within a tier
// rooms are walked in directory order and slots in calendar order. The failed
// triple itself is never returned. An empty result is not an error.
func FindAlternatives(conflict ConflictRecord, snap Snapshot, policy Policy, limit int) ([]AlternativeSlot, error) {
	if _, err := ParseDate(conflict.Date); err != nil {
		return nil, err
	}
	if err := validateResources(conflict.Slot, conflict.RoomID, conflict.TherapistIDs, snap.Directory); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultAlternativesLimit
	}

	requested := dedupe(conflict.TherapistIDs)
	gender := intendedGender(requested, snap.Directory, policy)

	var sameGender, others []string
	for _, t := range snap.Directory.Therapists {
		if contains(requested, t.ID) {
			continue
		}
		if gender != "" && t.Gender == gender {
			sameGender = append(sameGender, t.ID)
		} else {
			others = append(others, t.ID)
		}
	}

	tiers := []struct {
		reason     AlternativeReason
		therapists []string
	}{
		{AltSameTherapist, requested},
		{AltSameGender, sameGender},
		{AltOther, others},
	}

	out := make([]AlternativeSlot, 0, limit)
	for _, tier := range tiers {
		for _, room := range snap.Directory.Rooms {
			for _, slot := range snap.Calendars.Rooms.Slots(room.ID, conflict.Date) {
				for _, tid := range tier.therapists {
					if room.ID == conflict.RoomID && slot == conflict.Slot && contains(requested, tid) {
						continue
					}
					day := checkSlot(SlotRequest{
						Date:         conflict.Date,
						Slot:         slot,
						RoomID:       room.ID,
						TherapistIDs: []string{tid},
					}, snap, policy)
					if !day.Available {
						continue
					}
					out = append(out, AlternativeSlot{
						RoomID:      room.ID,
						Slot:        slot,
						TherapistID: tid,
						Reason:      tier.reason,
					})
					if len(out) == limit {
						return out, nil
					}
				}
			}
		}
	}
	return out, nil
}

// intendedGender is the client's gender when the match policy applies,
// otherwise the gender of the first requested therapist.
func intendedGender(requested []string, dir Directory, policy Policy) Gender {
	if policy.genderCheck() {
		return policy.ClientGender
	}
	for _, id := range requested {
		if t, ok := dir.Therapist(id); ok && t.Gender.Valid() {
			return t.Gender
		}
	}
	return ""
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
