package parm

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/malaterre/GEMS-PARM-01/internal/metrics"
	internalopts "github.com/malaterre/GEMS-PARM-01/internal/options"
	"github.com/malaterre/GEMS-PARM-01/internal/variant"
)

// Metrics collects decode outcomes. A nil *Metrics records nothing.
type Metrics = metrics.Metrics

// NewMetrics creates decode metrics registered with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return metrics.New(reg)
}

// DecodeOptions configures decoding.
type DecodeOptions struct {
	// Strict turns partially derived layouts into ErrPartialVariant.
	Strict bool
	// Logger receives debug output; defaults to the standard logrus logger.
	Logger logrus.FieldLogger
	// Metrics, when set, records every decode.
	Metrics *Metrics
	// Registry overrides the built-in variant table.
	Registry *variant.Registry
}

func (opts DecodeOptions) toInternal(ctx context.Context) context.Context {
	ctx = internalopts.WithLogger(ctx, opts.Logger)
	if opts.Strict {
		ctx = internalopts.WithStrict(ctx, true)
	}
	return ctx
}

func (opts DecodeOptions) registry() *variant.Registry {
	if opts.Registry != nil {
		return opts.Registry
	}
	return variant.Default()
}
