package attendance

type DayStatus string

const (
	StatusPresent DayStatus = "PRESENT"
	StatusHalfDay DayStatus = "HALF_DAY"
	StatusAbsent  DayStatus = "ABSENT"
)

var validStatuses = []string{string(StatusPresent), string(StatusHalfDay), string(StatusAbsent)}

// StatusSource tags where a day's status came from. Only DERIVED days are
// recomputed from worked minutes; LEAVE and OVERRIDE are human decisions.
type StatusSource string

const (
	SourceDerived  StatusSource = "DERIVED"
	SourceLeave    StatusSource = "LEAVE"
	SourceOverride StatusSource = "OVERRIDE"
)

const (
	PresentThresholdMinutes = 480
	HalfDayThresholdMinutes = 240
)

// DeriveStatus maps accumulated worked minutes to the coarse daily status.
// Negative input is a caller error and is treated as zero.
func DeriveStatus(minutes int) DayStatus {
	switch {
	case minutes >= PresentThresholdMinutes:
		return StatusPresent
	case minutes >= HalfDayThresholdMinutes:
		return StatusHalfDay
	default:
		return StatusAbsent
	}
}

func (s DayStatus) Valid() bool {
	return s == StatusPresent || s == StatusHalfDay || s == StatusAbsent
}

