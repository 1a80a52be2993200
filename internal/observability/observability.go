package observability

import (
	"context"
	"errors"

	"github.com/riskibarqy/floorball-league/internal/config"
	"github.com/riskibarqy/floorball-league/internal/platform/logging"
)

// Shutdown flushes or stops one observability backend.
type Shutdown func(context.Context) error

func noop(context.Context) error { return nil }

// Setup starts tracing, continuous profiling and the pprof listener. The
// returned Shutdown stops them in reverse order and reports every failure.
// On error, whatever already started is stopped before returning.
func Setup(cfg config.Config, logger *logging.Logger) (Shutdown, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var started []Shutdown
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(started) - 1; i >= 0; i-- {
			errs = append(errs, started[i](ctx))
		}
		return errors.Join(errs...)
	}

	steps := []func(config.Config, *logging.Logger) (Shutdown, error){
		InitUptrace,
		InitPyroscope,
		StartPprof,
	}
	for _, step := range steps {
		stop, err := step(cfg, logger)
		if err != nil {
			_ = shutdown(context.Background())
			return nil, err
		}
		started = append(started, stop)
	}
	return shutdown, nil
}
