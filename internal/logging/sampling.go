package logging

import (
	"go.uber.org/zap/zapcore"
)

// sampledLevels are the levels that get a sampling budget. Error and
// above always pass.
var sampledLevels = []zapcore.Level{
	TraceLevel,
	zapcore.DebugLevel,
	zapcore.InfoLevel,
	zapcore.WarnLevel,
}

// newSampledCore gives every level below Error its own sampler, using the
// budget from cfg.Levels. Levels without a budget are not sampled.
func newSampledCore(core zapcore.Core, cfg SamplingConfig) zapcore.Core {
	if !cfg.Enabled {
		return core
	}

	cores := []zapcore.Core{
		&levelRangeCore{Core: core, lo: zapcore.ErrorLevel, hi: zapcore.FatalLevel},
	}
	for _, lvl := range sampledLevels {
		only := &levelRangeCore{Core: core, lo: lvl, hi: lvl}
		budget, ok := cfg.Levels[lvl]
		if !ok {
			cores = append(cores, only)
			continue
		}
		cores = append(cores, zapcore.NewSamplerWithOptions(
			only, cfg.Tick.Duration(), budget.Initial, budget.Thereafter))
	}
	return zapcore.NewTee(cores...)
}

// levelRangeCore passes entries whose level lies in [lo, hi].
type levelRangeCore struct {
	zapcore.Core
	lo, hi zapcore.Level
}

func (c *levelRangeCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= c.lo && lvl <= c.hi && c.Core.Enabled(lvl)
}

func (c *levelRangeCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(e.Level) {
		return ce
	}
	return c.Core.Check(e, ce)
}

func (c *levelRangeCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelRangeCore{Core: c.Core.With(fields), lo: c.lo, hi: c.hi}
}
