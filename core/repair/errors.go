package repair

import "errors"

var (
	// ErrInvariant marks a candidate rejected by a state invariant. It is
	// internal to the cascade: the next strategy is tried automatically.
	ErrInvariant = errors.New("invariant violation")
	// ErrMealConstraint marks a candidate rejected by the meal validator.
	// Handled like ErrInvariant.
	ErrMealConstraint = errors.New("meal constraint violation")
	// ErrUnknownStop is returned when the disrupted stop is not in the plan.
	ErrUnknownStop = errors.New("disrupted stop not in plan")
	// ErrStopLocked is returned when the disrupted stop already departed or
	// was visited; a locked stop cannot be repaired.
	ErrStopLocked = errors.New("disrupted stop is locked")
	// ErrSchedulerLogic is fatal: the engine produced zero scheduled stops
	// despite a non-empty candidate pool. It indicates a contract violation
	// upstream and must abort loudly.
	ErrSchedulerLogic = errors.New("scheduler logic error")
)
