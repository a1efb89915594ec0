package notification

// Status is the aggregate result of one delivery attempt across all requested
// channels.
type Status string

const (
	StatusSent    Status = "sent"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// Outcome records what happened on a single channel. Attempted=false means
// the channel could not even be tried (no address on file, recipient offline)
// and is not an error.
type Outcome struct {
	Attempted bool   `json:"attempted"`
	Succeeded bool   `json:"succeeded"`
	Error     string `json:"error,omitempty"`
	// Transient classifies a failed attempt for the job-level retry decision;
	// it is not part of the persisted audit record.
	Transient bool `json:"-"`
}

// Outcomes maps each requested channel to its result.
type Outcomes map[Channel]Outcome

// Status derives the aggregate status: sent when every attempted channel
// succeeded, partial when some attempted channels failed, failed when every
// attempted channel failed or nothing could be attempted at all.
func (o Outcomes) Status() Status {
	attempted, succeeded := 0, 0
	for _, out := range o {
		if !out.Attempted {
			continue
		}
		attempted++
		if out.Succeeded {
			succeeded++
		}
	}
	switch {
	case attempted == 0:
		return StatusFailed
	case succeeded == attempted:
		return StatusSent
	case succeeded == 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}
