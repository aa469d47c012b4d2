// Package tracing provides the tracers of the executions. The tracers are
// jaeger tracers configured from the JAEGER_* environment variables.
package tracing

import (
	"io"
	"sync"

	"github.com/hashicorp/go-multierror"
	opentracing "github.com/opentracing/opentracing-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"golang.org/x/xerrors"
)

type tracerCatalog struct {
	sync.Mutex
	tracerByService map[string]closableTracer
}

type closableTracer struct {
	tracer opentracing.Tracer
	closer io.Closer
}

var catalog = tracerCatalog{
	tracerByService: make(map[string]closableTracer),
}

// GetTracer returns the tracer of the service. Since the tracers are cached,
// it returns an existing one if it has been initialized before. A disabled
// tracing returns a no-op tracer.
func GetTracer(service string, enabled bool) (opentracing.Tracer, error) {
	if !enabled {
		return opentracing.NoopTracer{}, nil
	}

	catalog.Lock()
	defer catalog.Unlock()

	tc, ok := catalog.tracerByService[service]
	if ok {
		return tc.tracer, nil
	}

	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		return nil, xerrors.Errorf("failed to parse jaeger configuration: %v", err)
	}

	cfg.ServiceName = service

	tracer, closer, err := cfg.NewTracer()
	if err != nil {
		return nil, xerrors.Errorf("failed to create tracer: %v", err)
	}

	catalog.tracerByService[service] = closableTracer{
		tracer: tracer,
		closer: closer,
	}

	return tracer, nil
}

// CloseAll closes all the tracer instances and empties the cache.
func CloseAll() error {
	catalog.Lock()
	defer catalog.Unlock()

	var result error

	for service, tc := range catalog.tracerByService {
		err := tc.closer.Close()
		if err != nil {
			result = multierror.Append(result, xerrors.Errorf("tracer '%s': %v", service, err))
		}

		delete(catalog.tracerByService, service)
	}

	return result
}
