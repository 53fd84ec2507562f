package runtime

import "github.com/ethwasm/hostvm/types"

// gasMeter is the per-invocation meter charged by the host externs. One
// meter covers a single frame; nested calls run on sub-meters whose
// consumption is folded back into the parent when the callee finishes.
type gasMeter struct {
	limit    types.Gas
	consumed types.Gas
}

var _ types.GasMeter = (*gasMeter)(nil)

func newGasMeter(limit types.Gas) *gasMeter {
	return &gasMeter{limit: limit}
}

// GasConsumed implements types.GasMeter.
func (g *gasMeter) GasConsumed() types.Gas {
	return g.consumed
}

// GasRemaining implements types.GasMeter.
func (g *gasMeter) GasRemaining() types.Gas {
	if g.consumed >= g.limit {
		return 0
	}
	return g.limit - g.consumed
}

// ConsumeGas implements types.GasMeter.
func (g *gasMeter) ConsumeGas(amount types.Gas, descriptor string) error {
	if g.consumed+amount > g.limit || g.consumed+amount < g.consumed {
		return types.OutOfGasError{Descriptor: descriptor}
	}
	g.consumed += amount
	return nil
}
