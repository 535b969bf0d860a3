package repcounter

// Phase is the half of the repetition the counter is waiting for.
type Phase int

const (
	AwaitingDown Phase = iota
	AwaitingUp
)

func (p Phase) String() string {
	switch p {
	case AwaitingDown:
		return "AWAITING_DOWN"
	case AwaitingUp:
		return "AWAITING_UP"
	default:
		return "UNKNOWN"
	}
}

// Counter counts repetitions in a joint-angle stream. A repetition is a full
// down -> up excursion: the angle has to drop to the down threshold and then
// climb back to the up threshold. The band between the two thresholds absorbs
// jitter, so noise around either cutoff never counts twice.
type Counter struct {
	exercise string
	up       float64
	down     float64
	phase    Phase
	reps     int
}

func New(exercise string, up, down float64) Counter {
	return Counter{
		exercise: exercise,
		up:       up,
		down:     down,
		phase:    AwaitingDown,
	}
}

// Update feeds one angle (degrees) into the counter.
// Angles are not clamped; a NaN fails both comparisons and changes nothing.
func (c *Counter) Update(angle float64) {
	switch c.phase {
	case AwaitingDown:
		if angle <= c.down {
			c.phase = AwaitingUp
		}
	case AwaitingUp:
		if angle >= c.up {
			c.reps++
			c.phase = AwaitingDown
		}
	}
}

func (c Counter) Reps() int {
	return c.reps
}

func (c Counter) Phase() Phase {
	return c.phase
}

func (c Counter) Exercise() string {
	return c.exercise
}
