// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025 Datadog, Inc.

package trace

import (
	"fmt"
	"time"
)

// AttributeKind discriminates the variants of an AttributeValue.
type AttributeKind int

// The attribute value kinds.
const (
	AttributeKindString AttributeKind = iota
	AttributeKindBool
	AttributeKindInt64
)

// AttributeValue holds exactly one of a string, a bool or an int64.
type AttributeValue struct {
	kind AttributeKind
	str  string
	b    bool
	i    int64
}

// StringAttribute returns an AttributeValue holding s. Empty strings are
// legal values and survive a snapshot round-trip.
func StringAttribute(s string) AttributeValue {
	return AttributeValue{kind: AttributeKindString, str: s}
}

// BoolAttribute returns an AttributeValue holding b.
func BoolAttribute(b bool) AttributeValue {
	return AttributeValue{kind: AttributeKindBool, b: b}
}

// Int64Attribute returns an AttributeValue holding i.
func Int64Attribute(i int64) AttributeValue {
	return AttributeValue{kind: AttributeKindInt64, i: i}
}

// Kind returns which variant the value holds.
func (v AttributeValue) Kind() AttributeKind { return v.kind }

// String renders the held variant as text: the string itself, "true" or
// "false" for a bool, and the decimal form of an int64.
func (v AttributeValue) String() string {
	switch v.kind {
	case AttributeKindString:
		return v.str
	case AttributeKindBool:
		return fmt.Sprintf("%t", v.b)
	default:
		return fmt.Sprintf("%d", v.i)
	}
}

// StringValue returns the string variant.
func (v AttributeValue) StringValue() string { return v.str }

// BoolValue returns the bool variant.
func (v AttributeValue) BoolValue() bool { return v.b }

// Int64Value returns the int64 variant.
func (v AttributeValue) Int64Value() int64 { return v.i }

// Annotation is a text event recorded on a span. Time is populated on
// snapshots; while the span is live the annotation's position is tracked
// by a monotonic reading.
type Annotation struct {
	Time       time.Time
	Message    string
	Attributes map[string]AttributeValue
}

// MessageEventType specifies the direction of a message event.
type MessageEventType int

// The message event directions.
const (
	MessageEventTypeUnspecified MessageEventType = iota
	MessageEventTypeSent
	MessageEventTypeReceived
)

// MessageEvent records a message sent or received over the operation the
// span describes. MessageID should be unique within the span and shared
// between the matching send and receive events.
type MessageEvent struct {
	Time                 time.Time
	Type                 MessageEventType
	MessageID            int64
	UncompressedByteSize int64
	CompressedByteSize   int64
}

// LinkType describes the relationship of a linked span to this one.
type LinkType int

// The link types.
const (
	LinkTypeUnspecified LinkType = iota
	LinkTypeChild
	LinkTypeParent
)

// Link points to a span in another trace, or to a sibling relationship
// the parent/child hierarchy cannot express.
type Link struct {
	TraceID    TraceID
	SpanID     SpanID
	Type       LinkType
	Attributes map[string]AttributeValue
}

// StatusCode is a canonical status code for a completed span.
type StatusCode int32

// The canonical status codes.
const (
	StatusCodeOK                 StatusCode = 0
	StatusCodeCancelled          StatusCode = 1
	StatusCodeUnknown            StatusCode = 2
	StatusCodeInvalidArgument    StatusCode = 3
	StatusCodeDeadlineExceeded   StatusCode = 4
	StatusCodeNotFound           StatusCode = 5
	StatusCodeAlreadyExists      StatusCode = 6
	StatusCodePermissionDenied   StatusCode = 7
	StatusCodeResourceExhausted  StatusCode = 8
	StatusCodeFailedPrecondition StatusCode = 9
	StatusCodeAborted            StatusCode = 10
	StatusCodeOutOfRange         StatusCode = 11
	StatusCodeUnimplemented      StatusCode = 12
	StatusCodeInternal           StatusCode = 13
	StatusCodeUnavailable        StatusCode = 14
	StatusCodeDataLoss           StatusCode = 15
	StatusCodeUnauthenticated    StatusCode = 16
)

// Status is the final status of a span.
type Status struct {
	Code    StatusCode
	Message string
}

// IsOK reports whether the status carries the OK code.
func (s Status) IsOK() bool { return s.Code == StatusCodeOK }
