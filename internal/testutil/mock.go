// Package testutil provides shared testing utilities for mock handling.
package testutil

import (
	"fmt"

	"github.com/stretchr/testify/mock"
)

// ValidateArgs validates mock arguments count against expected count
func ValidateArgs(args mock.Arguments, expectedCount int) error {
	if len(args) != expectedCount {
		return fmt.Errorf("mock not properly configured: expected %d return values, got %d", expectedCount, len(args)) //nolint:err113 // defensive error for test mock
	}
	return nil
}

// HandleTwoValueReturn extracts a typed result from mock arguments for
// methods that return (result, error) where result is at index 0.
func HandleTwoValueReturn[T any](args mock.Arguments) (T, error) {
	var zero T

	if err := ValidateArgs(args, 2); err != nil {
		return zero, err
	}

	if args.Get(0) == nil {
		return zero, args.Error(1)
	}

	result, ok := args.Get(0).(T)
	if !ok {
		return zero, fmt.Errorf("mock result at index 0 is not of expected type %T", zero) //nolint:err113 // defensive error for test mock
	}

	return result, args.Error(1)
}

// HandleSingleErrorReturn extracts error from mock arguments for methods that
// return only error.
func HandleSingleErrorReturn(args mock.Arguments) error {
	if err := ValidateArgs(args, 1); err != nil {
		return err
	}

	if args.Get(0) == nil {
		return nil
	}

	if err, ok := args.Get(0).(error); ok {
		return err
	}

	return fmt.Errorf("mock returned non-error type: %T", args.Get(0)) //nolint:err113 // defensive error for test mock
}
