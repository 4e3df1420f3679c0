// Package ucdef defines the shapes of use cases that the catalog exposes.
//
// Every use case carries an OperationID. The dispatcher uses it as the
// request name in logs, spans and request metadata.
package ucdef

import "context"

// Use case types.
const (
	TypeUserAction    = "user_action"
	TypeManualCommand = "manual_command"
)

// UserAction is a synchronous operation whose caller waits for the result,
// such as CreateHousing or ListHousings. Inputs are validated and errors go
// straight back to the caller.
type UserAction[I, O any] interface {
	// OperationID returns a unique identifier for the use case.
	OperationID() string

	// Execute executes the use case.
	Execute(ctx context.Context, in I) (O, error)
}

// ManualCommand is an administrative operation run by an operator from the
// command line, such as seeding reference data. Success or failure is
// reported through the error and the logs only.
type ManualCommand[I any] interface {
	// OperationID returns a unique identifier for the use case.
	OperationID() string

	// Execute executes the manual command.
	Execute(ctx context.Context, in I) error
}
