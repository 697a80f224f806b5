package telemetry

import (
	"context"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys. Labels attach to profile samples collected
// while the wrapped function runs, so flame graphs can be sliced by
// request route, shop, or background operation.
const (
	ProfilingLabelController = "controller"
	ProfilingLabelRoute      = "route"
	ProfilingLabelMethod     = "method"
	ProfilingLabelShop       = "shop"
	ProfilingLabelOperation  = "operation"
	ProfilingLabelComponent  = "component"
)

// Background operation names used in profiling and span labels.
const (
	OperationIngestOrders   = "ingest_orders"
	OperationSnapshotStock  = "snapshot_stock"
	OperationApplyRanking   = "apply_ranking"
	OperationPreviewRanking = "preview_ranking"
)

// MaxLabelValueLength caps label values. Pyroscope stores each unique
// label combination as a separate series, so unbounded values blow up
// storage.
const MaxLabelValueLength = 128

// HighCardinalityLabels are keys that must never become profiling
// labels. Per-request and per-entity identifiers create a new series
// per value.
var HighCardinalityLabels = map[string]bool{
	"request_id": true,
	"trace_id":   true,
	"span_id":    true,
	"session_id": true,
	"order_id":   true,
	"order_name": true,
	"product_id": true,
	"variant_id": true,
	"sku":        true,
}

// WithProfilingLabels runs fn with the given labels attached to any
// profile samples collected during its execution. Labels are
// sanitized first; high-cardinality keys are dropped. Works as a
// no-op when the profiler is not running.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	sanitized := sanitizeLabels(labels)
	if len(sanitized) == 0 {
		fn(ctx)
		return
	}

	args := make([]string, 0, len(sanitized)*2)
	for k, v := range sanitized {
		args = append(args, k, v)
	}

	pyroscope.TagWrapper(ctx, pyroscope.Labels(args...), fn)
}

// sanitizeLabels drops high-cardinality and empty labels, sanitizes
// keys, and truncates long values.
func sanitizeLabels(labels map[string]string) map[string]string {
	if len(labels) == 0 {
		return nil
	}

	sanitized := make(map[string]string, len(labels))
	for k, v := range labels {
		if HighCardinalityLabels[k] {
			continue
		}
		if v == "" {
			continue
		}

		key := sanitizeLabelKey(k)
		if key == "" {
			continue
		}

		if len(v) > MaxLabelValueLength {
			v = v[:MaxLabelValueLength]
		}
		sanitized[key] = v
	}

	return sanitized
}

// sanitizeLabelKey replaces characters outside [a-zA-Z0-9_] with
// underscores.
func sanitizeLabelKey(key string) string {
	if key == "" {
		return ""
	}

	out := make([]byte, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
			out[i] = c
		default:
			out[i] = '_'
		}
	}
	return string(out)
}

// HTTPRequestLabels builds the standard profiling label set for an
// HTTP request. Empty values are dropped during sanitization.
func HTTPRequestLabels(controller, route, method, shop string) map[string]string {
	return map[string]string{
		ProfilingLabelController: controller,
		ProfilingLabelRoute:      route,
		ProfilingLabelMethod:     method,
		ProfilingLabelShop:       shop,
	}
}

// OperationLabels builds profiling labels for a named operation
// within a component.
func OperationLabels(component, operation string) map[string]string {
	return map[string]string{
		ProfilingLabelComponent: component,
		ProfilingLabelOperation: operation,
	}
}

// IngestionOperationLabels builds profiling labels for an ingestion
// run against a shop.
func IngestionOperationLabels(operation, shop string) map[string]string {
	labels := OperationLabels("ingestion", operation)
	labels[ProfilingLabelShop] = shop
	return labels
}

// RankingOperationLabels builds profiling labels for a ranking run
// against a shop.
func RankingOperationLabels(operation, shop string) map[string]string {
	labels := OperationLabels("ranking", operation)
	labels[ProfilingLabelShop] = shop
	return labels
}
