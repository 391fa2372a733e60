// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

package trace

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a caller passes a value that
	// violates a documented precondition.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState is returned when an operation is not legal in the
	// span's current state.
	ErrInvalidState = errors.New("invalid state")
)

func errInvalidArgumentf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, a...))
}

func errInvalidStatef(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, a...))
}
