package middleware

import (
	"fmt"

	"github.com/grafana/pyroscope-go"
	"github.com/rs/zerolog/log"

	"github.com/duynhne/webui-auth-gate/config"
)

// profiler is the running profiler; *pyroscope.Profiler in production.
var profiler interface{ Stop() error }

// InitProfiling starts continuous profiling to Pyroscope.
func InitProfiling(cfg *config.Config) error {
	p, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.Service.Name,
		ServerAddress:   cfg.Profiling.Endpoint,
		Tags: map[string]string{
			"env":     cfg.Service.Env,
			"version": cfg.Service.Version,
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		return fmt.Errorf("start pyroscope: %w", err)
	}
	profiler = p
	return nil
}

// StopProfiling flushes and stops the profiler started by InitProfiling.
func StopProfiling() {
	if profiler == nil {
		return
	}
	if err := profiler.Stop(); err != nil {
		log.Warn().Err(err).Msg("Profiler flush failed")
	}
	profiler = nil
}
