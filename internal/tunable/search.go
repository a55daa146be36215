package tunable

import (
	"fmt"
	"time"
)

const (
	// approxIters is the cheap-screen sample size.
	approxIters = 3
	// slowSkipFactor prunes candidates whose approximate duration exceeds
	// this multiple of the best so far.
	slowSkipFactor = 2

	defaultWarmupIters = 1
	defaultTuningIters = 100
)

// findFastest measures every registered candidate against one live parameter
// instance and returns the fastest verified-correct one, or the Default
// sentinel with an infinite duration when none qualify. Candidates are
// evaluated in registration order and a strictly-smaller duration is required
// to displace the current best, so registration order breaks ties.
func (o *Op) findFastest(p Params, cfg Config) ResultEntry {
	opSig := o.Signature()
	paramsSig := p.Signature()
	log := o.ctx.log
	log.Info("finding fastest candidate", "op", opSig, "params", paramsSig, "candidates", len(o.names))

	var flush func()
	if cfg.ICacheFlush {
		flush = o.ctx.flushFn
		log.Debug("instruction cache flush enabled", "pre_search_iters", cfg.ICacheFlushIters)
		for i := 0; i < cfg.ICacheFlushIters; i++ {
			flush()
		}
	}

	// Reference output for the correctness gate. The default candidate must
	// handle every supported shape.
	reference := p.DeepCopy(false)
	defer reference.Release()
	if err := o.ops[o.names[0]].Call(reference); err != nil {
		panic(fmt.Sprintf("tunable: default candidate %q failed for op %s (params %s): %v",
			o.names[0], opSig, paramsSig, err))
	}

	pool := newBufferPool(p, cfg.RotatingBufferSize)
	defer pool.releaseAll()
	if cfg.RotatingBufferSize > 0 {
		log.Debug("buffer rotation enabled",
			"budget_bytes", cfg.RotatingBufferSize,
			"copy_bytes", p.Size(true),
			"copies", pool.size())
	}

	bestName := ""
	bestDuration := durationInfinity

	for _, name := range o.names {
		candidate := o.ops[name]

		if cfg.NumericsCheck {
			check := p.DeepCopy(false)
			if err := candidate.Call(check); err != nil {
				check.Release()
				log.Info("skipping unsupported candidate", "op", opSig, "params", paramsSig, "candidate", name, "err", err)
				continue
			}
			err := reference.NumericalCheck(check)
			check.Release()
			if err != nil {
				log.Info("numerics check failed", "op", opSig, "params", paramsSig, "candidate", name, "err", err)
				continue
			}
		} else {
			if err := candidate.Call(pool.get(0)); err != nil {
				log.Info("skipping unsupported candidate", "op", opSig, "params", paramsSig, "candidate", name, "err", err)
				continue
			}
		}

		approx := profile(name, candidate, pool, approxIters, flush)
		if bestDuration != durationInfinity && approx > slowSkipFactor*bestDuration {
			log.Info("skipping slow candidate", "op", opSig, "params", paramsSig, "candidate", name, "approx", approx)
			continue
		}

		warmupIters, tuningIters := iterationBudgets(cfg, approx, pool.size())
		log.Debug("measuring candidate",
			"op", opSig, "params", paramsSig, "candidate", name,
			"warmup_iters", warmupIters, "tuning_iters", tuningIters,
			"approx", approx)

		warmUp(name, candidate, pool, warmupIters, flush)
		duration := profile(name, candidate, pool, tuningIters, flush)
		if duration < bestDuration {
			log.Info("new best candidate", "op", opSig, "params", paramsSig, "candidate", name, "duration", duration)
			bestDuration = duration
			bestName = name
		}
	}

	if bestName == "" {
		log.Info("no candidate qualified, selecting default", "op", opSig, "params", paramsSig)
		return ResultEntry{Kind: ResultDefault, Duration: durationInfinity}
	}
	log.Info("fastest candidate selected", "op", opSig, "params", paramsSig, "candidate", bestName, "duration", bestDuration)
	return Measured(bestName, bestDuration)
}

// iterationBudgets derives the warmup and tuning iteration counts from the
// configured caps. A cap pair expressed as both a duration and an iteration
// count resolves to the smaller iteration count; a single cap stands alone.
// Tuning is floored at one iteration and at the pool size so every rotated
// copy is exercised at least once.
func iterationBudgets(cfg Config, approx time.Duration, poolSize int) (warmupIters, tuningIters int) {
	if approx <= 0 {
		approx = 1
	}

	warmupIters = defaultWarmupIters
	if cfg.MaxWarmupDuration >= 0 {
		durationIters := int(cfg.MaxWarmupDuration / approx)
		if cfg.MaxWarmupIters >= 0 {
			warmupIters = min(cfg.MaxWarmupIters, durationIters)
		} else {
			warmupIters = durationIters
		}
	} else if cfg.MaxWarmupIters >= 0 {
		warmupIters = cfg.MaxWarmupIters
	}

	tuningIters = defaultTuningIters
	if cfg.MaxTuningDuration > 0 {
		durationIters := int(cfg.MaxTuningDuration / approx)
		if cfg.MaxTuningIters > 0 {
			tuningIters = min(cfg.MaxTuningIters, durationIters)
		} else {
			tuningIters = durationIters
		}
	} else if cfg.MaxTuningIters > 0 {
		tuningIters = cfg.MaxTuningIters
	}
	tuningIters = max(1, tuningIters)
	tuningIters = max(poolSize, tuningIters)
	return warmupIters, tuningIters
}
