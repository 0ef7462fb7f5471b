package common

import (
	"context"
	"io"

	"applykit/internal/errors"
)

// LoadInputFunc gathers the input of a command from files, flags or the store.
type LoadInputFunc[Input any] func(ctx context.Context) (Input, error)

// LogDetailsFunc logs the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// OperationFunc is the work a command performs on its input.
type OperationFunc[Input, Output any] func(context.Context, Input) (Output, error)

// RunCommand loads the input, runs the operation and writes the formatted
// result. It returns the result so callers can post-process it.
func RunCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	out io.Writer,
	loadInput LoadInputFunc[Input],
	operation OperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) (Output, error) {
	var zero Output
	outputHandler := NewOutputHandler(logger)

	if err := outputHandler.fileProcessor.ValidateOutputFile(cmdConfig.OutputFile); err != nil {
		return zero, err
	}

	input, err := loadInput(ctx)
	if err != nil {
		return zero, err
	}

	if logDetails != nil {
		logDetails(input, cmdConfig)
	}

	result, err := operation(ctx, input)
	if err != nil {
		return zero, err
	}

	if err := outputHandler.HandleOutput(result, cmdConfig, out); err != nil {
		return zero, err
	}
	return result, nil
}
