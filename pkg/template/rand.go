package template

import (
	mathrand "math/rand/v2"
)

// rngIntN returns a random int in [0, n) using the context's RNG if set,
// otherwise the global math/rand/v2 source.
func rngIntN(ctx *Context, n int) int {
	if n <= 0 {
		return 0
	}
	if rng := ctxRNG(ctx); rng != nil {
		return rng.IntN(n)
	}
	return mathrand.IntN(n)
}

// rngFloat64 returns a random float64 in [0, 1).
func rngFloat64(ctx *Context) float64 {
	if rng := ctxRNG(ctx); rng != nil {
		return rng.Float64()
	}
	return mathrand.Float64()
}

func ctxRNG(ctx *Context) *mathrand.Rand {
	if ctx == nil {
		return nil
	}
	return ctx.Rand
}
