package scheduling

// Gender of a therapist or client. The zero value means unknown.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

type Therapist struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Gender Gender `json:"gender"`
}

type Room struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Directory holds the reference data for one scheduling horizon. Slice order
// is significant: the alternative search walks rooms and therapists in it.
type Directory struct {
	Therapists []Therapist
	Rooms      []Room
}

func (d Directory) Therapist(id string) (Therapist, bool) {
	for _, t := range d.Therapists {
		if t.ID == id {
			return t, true
		}
	}
	return Therapist{}, false
}

func (d Directory) Room(id string) (Room, bool) {
	for _, r := range d.Rooms {
		if r.ID == id {
			return r, true
		}
	}
	return Room{}, false
}

// TherapistName resolves a display name, falling back to the raw id.
func (d Directory) TherapistName(id string) string {
	if t, ok := d.Therapist(id); ok && t.Name != "" {
		return t.Name
	}
	return id
}

// RoomName resolves a display name, falling back to the raw id.
func (d Directory) RoomName(id string) string {
	if r, ok := d.Room(id); ok && r.Name != "" {
		return r.Name
	}
	return id
}

// DayCalendar maps an ISO date to the ordered slot tokens open on that date.
type DayCalendar map[string][]string

// AvailabilityCalendar maps a resource id to its day calendar.
type AvailabilityCalendar map[string]DayCalendar

// Open reports whether resourceID has slot open on date. A resource or date
// without an entry is closed.
func (c AvailabilityCalendar) Open(resourceID, date, slot string) bool {
	for _, s := range c[resourceID][date] {
		if s == slot {
			return true
		}
	}
	return false
}

// Slots returns the open slots for resourceID on date in calendar order.
func (c AvailabilityCalendar) Slots(resourceID, date string) []string {
	return c[resourceID][date]
}

// Add marks slots open for resourceID on date, keeping insertion order and
// ignoring duplicates.
func (c AvailabilityCalendar) Add(resourceID, date string, slots ...string) {
	days, ok := c[resourceID]
	if !ok {
		days = DayCalendar{}
		c[resourceID] = days
	}
	for _, s := range slots {
		if !contains(days[date], s) {
			days[date] = append(days[date], s)
		}
	}
}

type Calendars struct {
	Rooms      AvailabilityCalendar
	Therapists AvailabilityCalendar
}

func NewCalendars() Calendars {
	return Calendars{
		Rooms:      AvailabilityCalendar{},
		Therapists: AvailabilityCalendar{},
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
