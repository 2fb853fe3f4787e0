// Copyright (c) 2023 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package common

import (
	"context"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const (
	traceIdLogField = "traceID"
	tracerName      = "doorbell"
)

// Scope pairs a span with a log entry so that everything an alert does is
// both traced and logged under one trace id.
type Scope struct {
	Ctx     context.Context
	TraceID string
	Log     *log.Entry

	span oteltrace.Span
}

// NewScope starts a root span named name under ctx.
func NewScope(ctx context.Context, name string) *Scope {
	if ctx == nil {
		ctx = context.Background()
	}
	spanCtx, span := otel.Tracer(tracerName).Start(ctx, name)
	traceID := span.SpanContext().TraceID().String()

	return &Scope{
		Ctx:     spanCtx,
		TraceID: traceID,
		Log:     log.WithField(traceIdLogField, traceID),
		span:    span,
	}
}

// Child starts a nested span. Tags set on s are inherited by the log entry
// but not by the child span.
func (s *Scope) Child(name string) *Scope {
	spanCtx, span := s.span.TracerProvider().Tracer(tracerName).Start(s.Ctx, name)
	return &Scope{
		Ctx:     spanCtx,
		TraceID: s.TraceID,
		Log:     s.Log,
		span:    span,
	}
}

// Finish ends the span.
func (s *Scope) Finish() {
	s.span.End()
}

// Tag records key on the span and adds it to the log entry. Values of an
// unsupported type are logged only.
func (s *Scope) Tag(key string, value interface{}) {
	s.Log = s.Log.WithField(key, value)
	if kv, ok := attributeOf(key, value); ok {
		s.span.SetAttributes(kv)
	}
}

// Event marks a point in time on the span.
func (s *Scope) Event(msg string) {
	s.span.AddEvent(msg)
}

// Fail records err on the span and marks it failed.
func (s *Scope) Fail(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func attributeOf(key string, value interface{}) (attribute.KeyValue, bool) {
	switch v := value.(type) {
	case bool:
		return attribute.Bool(key, v), true
	case string:
		return attribute.String(key, v), true
	case int:
		return attribute.Int(key, v), true
	case int64:
		return attribute.Int64(key, v), true
	case uint32:
		return attribute.Int64(key, int64(v)), true
	case uint64:
		return attribute.Int64(key, int64(v)), true
	case float64:
		return attribute.Float64(key, v), true
	case []string:
		return attribute.StringSlice(key, v), true
	}
	return attribute.KeyValue{}, false
}
