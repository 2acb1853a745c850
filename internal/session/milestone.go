package session

import "fmt"

// Milestone marks a notable point in a run.
type Milestone uint8

const (
	MilestoneNone Milestone = iota
	MilestoneHalfway
	MilestoneComplete
)

func (m Milestone) String() string {
	switch m {
	case MilestoneHalfway:
		return "halfway"
	case MilestoneComplete:
		return "complete"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Milestone) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Banner returns the title and message shown when the milestone is reached.
func (m Milestone) Banner(total int) (string, string) {
	switch m {
	case MilestoneHalfway:
		return "Halfway There!", fmt.Sprintf(
			"Your choices are already shaping the world around you. %d more scenarios await — will you stay the course?",
			total-total/2)
	case MilestoneComplete:
		return "Journey Complete!", fmt.Sprintf(
			"You've navigated all %d scenarios. Your civic profile is ready — let's see who you really are.", total)
	}
	return "", ""
}

// milestoneAt reports the milestone reached after step decisions.
func milestoneAt(step, total int) Milestone {
	switch {
	case step >= total:
		return MilestoneComplete
	case total >= 2 && step == total/2:
		return MilestoneHalfway
	}
	return MilestoneNone
}
