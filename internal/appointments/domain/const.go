package domain

// Status represents the lifecycle state of an appointment.
type Status string

const (
	// StatusScheduled is the initial state of a booked appointment.
	StatusScheduled Status = "scheduled"
	// StatusConfirmed means the appointment was confirmed by the practice.
	StatusConfirmed Status = "confirmed"
	// StatusCompleted means the visit took place.
	StatusCompleted Status = "completed"
	// StatusCancelled means the appointment was called off. Terminal.
	StatusCancelled Status = "cancelled"
)

// Valid checks if the status has a valid value.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status may move to the target state.
// Completed and cancelled are terminal.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusScheduled:
		return target == StatusConfirmed || target == StatusCancelled
	case StatusConfirmed:
		return target == StatusCompleted || target == StatusCancelled
	}
	return false
}
