package solver

// InfoSet holds the regret tables for one hand at one decision node. Slices
// are indexed like the node's legal actions.
type InfoSet struct {
	Strategy    []float64
	RegretSum   []float64
	StrategySum []float64
	Visits      float64
}

func newInfoSet(actions int) *InfoSet {
	e := &InfoSet{
		Strategy:    make([]float64, actions),
		RegretSum:   make([]float64, actions),
		StrategySum: make([]float64, actions),
	}
	e.uniform()
	return e
}

func (e *InfoSet) uniform() {
	v := 1.0 / float64(len(e.Strategy))
	for i := range e.Strategy {
		e.Strategy[i] = v
	}
}

// update applies one outcome sampled regret step. actionEV holds the sampled
// utility of each action; actions that were not sampled carry zero.
func (e *InfoSet) update(actionEV []float64, reach float64) {
	strategyEV := 0.0
	for i, p := range e.Strategy {
		strategyEV += p * actionEV[i]
	}
	for i := range e.RegretSum {
		e.RegretSum[i] += actionEV[i] - strategyEV
	}
	for i, p := range e.Strategy {
		e.StrategySum[i] += p * reach
	}
	e.regretMatch()
	e.Visits += reach
}

// regretMatch sets the current strategy proportional to positive regret,
// falling back to uniform when no regret is positive.
func (e *InfoSet) regretMatch() {
	total := 0.0
	for _, r := range e.RegretSum {
		if r > 0 {
			total += r
		}
	}
	if total <= 0 {
		e.uniform()
		return
	}
	for i, r := range e.RegretSum {
		if r > 0 {
			e.Strategy[i] = r / total
		} else {
			e.Strategy[i] = 0
		}
	}
}

// average returns the reach weighted average strategy.
func (e *InfoSet) average() []float64 {
	out := make([]float64, len(e.StrategySum))
	total := 0.0
	for _, v := range e.StrategySum {
		total += v
	}
	if total <= 0 {
		v := 1.0 / float64(len(out))
		for i := range out {
			out[i] = v
		}
		return out
	}
	for i, v := range e.StrategySum {
		out[i] = v / total
	}
	return out
}
