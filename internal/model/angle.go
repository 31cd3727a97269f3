package model

// AngleType classifies the outreach hook, in descending order of strength.
type AngleType string

const (
	AngleTriggerEvent   AngleType = "trigger_event"
	AngleRecentActivity AngleType = "recent_activity"
	AnglePainPoint      AngleType = "pain_point"
	AngleTimingSignal   AngleType = "timing_signal"
	AngleGeneric        AngleType = "generic"
)

// knownAngleTypes guards against free-form model output.
var knownAngleTypes = map[AngleType]bool{
	AngleTriggerEvent:   true,
	AngleRecentActivity: true,
	AnglePainPoint:      true,
	AngleTimingSignal:   true,
	AngleGeneric:        true,
}

// NormalizeAngleType maps unrecognized values to generic.
func NormalizeAngleType(t AngleType) AngleType {
	if knownAngleTypes[t] {
		return t
	}
	return AngleGeneric
}

// Angle is the single strongest contextual reason to reach out now.
type Angle struct {
	Primary    string    `json:"primary_angle"`
	Type       AngleType `json:"angle_type"`
	Confidence int       `json:"confidence"` // 0-100
	Evidence   string    `json:"supporting_evidence"`
	WhyNow     string    `json:"why_now"`
	Backups    []string  `json:"backup_angles,omitempty"`
}
