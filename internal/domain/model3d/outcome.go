package model3d

// OutcomeKind discriminates TaskOutcome.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota + 1
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// TaskOutcome is the interpreted provider reply. Build it with Success or
// Failure; the zero value is not a valid outcome.
type TaskOutcome struct {
	kind       OutcomeKind
	taskID     string
	meshURL    *string
	previewURL *string
	reason     string
}

// Success records a created task. Empty artifact URLs are stored as absent.
func Success(taskID, meshURL, previewURL string) TaskOutcome {
	return TaskOutcome{
		kind:       OutcomeSuccess,
		taskID:     taskID,
		meshURL:    optional(meshURL),
		previewURL: optional(previewURL),
	}
}

func Failure(reason string) TaskOutcome {
	return TaskOutcome{kind: OutcomeFailure, reason: reason}
}

func (o TaskOutcome) Kind() OutcomeKind { return o.kind }
func (o TaskOutcome) Succeeded() bool   { return o.kind == OutcomeSuccess }
func (o TaskOutcome) TaskID() string    { return o.taskID }
func (o TaskOutcome) Reason() string    { return o.reason }

func (o TaskOutcome) MeshURL() *string    { return cloneString(o.meshURL) }
func (o TaskOutcome) PreviewURL() *string { return cloneString(o.previewURL) }

// TargetState is the state a record moves to for this outcome.
func (o TaskOutcome) TargetState() GenerationStateName {
	if o.Succeeded() {
		return StateGenerated
	}
	return StateError
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
