// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"
	"fmt"

	"github.com/AccelByte/extend-doorbell/pkg/common"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// SetupTelemetry exports alert spans to the zipkin collector at endpoint.
// The B3 and W3C propagators it installs stamp trace headers onto sound
// URL downloads. The returned function flushes pending spans.
func SetupTelemetry(endpoint, serviceName, environment string) (func(context.Context) error, error) {
	provider, err := common.NewTracerProvider(endpoint, serviceName, environment)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer provider: %w", err)
	}

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		b3.New(),
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	logrus.Infof("tracing %s (%s) to %s", serviceName, environment, endpoint)

	return func(ctx context.Context) error {
		logrus.Info("flushing traces...")
		return provider.Shutdown(ctx)
	}, nil
}
