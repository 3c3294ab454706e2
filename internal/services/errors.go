package services

import "errors"

// Expected failure conditions returned by the lifecycle services.
// Handlers translate these to HTTP statuses; anything else is an
// internal store failure and surfaces as a 500 with a generic message.
var (
	// ErrNotFound means the entity does not exist or is hidden by a
	// soft delete.
	ErrNotFound = errors.New("not found")

	// ErrValidation means the input violates a field-level rule. Wrap
	// it with the specific message: fmt.Errorf("%w: title is required", ErrValidation).
	ErrValidation = errors.New("validation failed")

	// ErrSprintAlreadyActive means the project already has an active
	// sprint; at most one is allowed at a time.
	ErrSprintAlreadyActive = errors.New("there is already an active sprint for this project")

	// ErrSprintCompleted means the sprint has already ended; completion
	// is one-way.
	ErrSprintCompleted = errors.New("sprint is already completed")
)
