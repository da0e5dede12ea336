package scheduling

import (
	"fmt"
	"strings"
)

const (
	MsgAllAvailable    = "All slots are available"
	MsgSomeUnavailable = "Some slots are not available"
	MsgNoAlternatives  = "No alternatives found"
)

// FormatConflicts renders one line per conflict for display.
func FormatConflicts(conflicts []ConflictRecord, dir Directory) []string {
	lines := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		names := make([]string, 0, len(c.TherapistIDs))
		for _, id := range c.TherapistIDs {
			names = append(names, dir.TherapistName(id))
		}
		lines = append(lines, fmt.Sprintf("%s @ %s: %s already booked", c.Date, c.Slot, strings.Join(names, ", ")))
	}
	return lines
}

type AlternativeView struct {
	AlternativeSlot
	RoomName      string `json:"room_name"`
	TherapistName string `json:"therapist_name"`
}

type Report struct {
	Message      string            `json:"message"`
	Conflicts    []string          `json:"conflicts,omitempty"`
	Skipped      []string          `json:"skipped,omitempty"`
	Alternatives []AlternativeView `json:"alternatives,omitempty"`
}

// BuildReport turns a recurring result and any alternatives into display
// data. It makes no scheduling decisions.
func BuildReport(result RecurringResult, alternatives []AlternativeSlot, dir Directory) Report {
	rep := Report{
		Conflicts: FormatConflicts(result.Conflicts(), dir),
		Skipped:   result.Skipped,
	}
	for _, alt := range alternatives {
		rep.Alternatives = append(rep.Alternatives, AlternativeView{
			AlternativeSlot: alt,
			RoomName:        dir.RoomName(alt.RoomID),
			TherapistName:   dir.TherapistName(alt.TherapistID),
		})
	}

	switch {
	case result.AllAvailable:
		rep.Message = MsgAllAvailable
	case len(alternatives) == 0:
		rep.Message = MsgSomeUnavailable + ". " + MsgNoAlternatives
	default:
		rep.Message = MsgSomeUnavailable
	}
	return rep
}
