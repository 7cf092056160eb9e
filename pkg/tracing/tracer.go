// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tracing wraps the stages of the signing pipeline in spans. The
// default build uses a no-op tracer; building with -tags=otel exports spans
// over OTLP/HTTP configured from the standard OTEL_* environment variables.
package tracing

import "context"

// Span is a single timed operation.
type Span interface {
	SetAttribute(key string, value interface{})
	// RecordError marks the span as failed.
	RecordError(err error)
	End()
}

// Tracer creates spans for named operations.
type Tracer interface {
	Start(ctx context.Context, name string) (context.Context, Span)
}

var globalTracer Tracer = NoopTracer{}

// SetTracer sets the global tracer. Passing nil restores the no-op tracer.
func SetTracer(t Tracer) {
	if t == nil {
		globalTracer = NoopTracer{}
		return
	}
	globalTracer = t
}

// GetTracer returns the current global tracer (never nil).
func GetTracer() Tracer {
	return globalTracer
}

// Start starts a new span with the global tracer.
func Start(ctx context.Context, name string) (context.Context, Span) {
	return GetTracer().Start(ctx, name)
}

// Enabled returns true when a real (non-noop) tracer is configured.
func Enabled() bool {
	_, noop := GetTracer().(NoopTracer)
	return !noop
}

// Run runs fn inside a span named name, setting attrs on it and recording the
// error fn returns. With the no-op tracer fn is called directly.
func Run(ctx context.Context, name string, attrs map[string]interface{}, fn func(context.Context) error) error {
	if !Enabled() {
		return fn(ctx)
	}
	ctx, span := Start(ctx, name)
	defer span.End()
	for k, v := range attrs {
		span.SetAttribute(k, v)
	}
	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
	}
	return err
}
