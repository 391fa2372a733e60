// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

package view

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a caller passes a value that
	// violates a documented precondition.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupported is returned for operations a given aggregation or
	// build profile does not support.
	ErrUnsupported = errors.New("unsupported operation")
)

func errInvalidArgumentf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, a...))
}

func errUnsupportedf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, fmt.Sprintf(format, a...))
}
