// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/relay/internal/core/domain"
)

// Executor spawns external processes.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the command with inherited standard streams and waits for it to exit.
	//
	// A non-zero exit is reported as domain.ErrSubprocessFailed with the exit code
	// in the message and in the "exit_code" metadata.
	Execute(ctx context.Context, cmd domain.Command) error
}
