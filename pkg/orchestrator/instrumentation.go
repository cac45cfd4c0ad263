package orchestrator

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
)

const scopeName = "github.com/teslashibe/go-g1/pkg/orchestrator"

var (
	tracer = otel.Tracer(scopeName)
	// events carries one record per finished action to the OpenTelemetry
	// log pipeline, correlated with the action's span.
	events = otelslog.NewLogger(scopeName)
)
