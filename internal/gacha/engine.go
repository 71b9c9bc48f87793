package gacha

// Move is one weighted edge taken by a single draw during propagation.
type Move struct {
	Draw     int // 1-based index of the draw that produced the move
	From, To State
	Mass     float64
	Hit      bool
	Featured bool // hit was the featured item
}

// Observer receives every move produced by Engine.Step.
type Observer func(Move)

// Engine propagates a Distribution through draws under fixed Rules.
// It holds no per-query state and is safe for concurrent use.
type Engine struct {
	rules Rules
	rates rateTable
	prune float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithPruning drops states whose mass falls below eps before they are expanded.
// Pruned mass is lost, so Distribution.Total drifts below 1.
func WithPruning(eps float64) Option {
	return func(e *Engine) { e.prune = eps }
}

// NewEngine validates rules and builds an engine around them.
func NewEngine(rules Rules, opts ...Option) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{rules: rules, rates: newRateTable(rules)}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

func mustEngine(rules Rules) *Engine {
	e, err := NewEngine(rules)
	if err != nil {
		panic(err)
	}
	return e
}

// Rules returns the rules the engine was built with.
func (e *Engine) Rules() Rules { return e.rules }

// Rate is the memoized hit rate at pity n.
func (e *Engine) Rate(n int) float64 { return e.rates.at(n) }

// Step applies one draw to every state of cur and returns the successor
// distribution. Featured counts saturate at ceiling; states already above it
// are dropped. obs may be nil.
func (e *Engine) Step(cur Distribution, ceiling, draw int, obs Observer) Distribution {
	next := make(Distribution, len(cur))
	emit := func(mv Move) {
		if mv.Mass <= 0 {
			return
		}
		next.add(mv.To, mv.Mass)
		if obs != nil {
			obs(mv)
		}
	}

	for _, s := range cur.States() {
		m := cur[s]
		if m <= 0 || m < e.prune || s.Featured > ceiling {
			continue
		}
		r := e.rates.at(s.Pity)

		emit(Move{
			Draw: draw,
			From: s,
			To:   State{Pity: min(s.Pity+1, e.rules.HardPity), Guaranteed: s.Guaranteed, Featured: s.Featured},
			Mass: m * (1 - r),
		})
		if r == 0 {
			continue
		}

		hit := m * r
		up := State{Pity: 0, Guaranteed: false, Featured: min(s.Featured+1, ceiling)}
		if s.Guaranteed {
			emit(Move{Draw: draw, From: s, To: up, Mass: hit, Hit: true, Featured: true})
			continue
		}
		f := e.rules.FeaturedRate
		emit(Move{Draw: draw, From: s, To: State{Pity: 0, Guaranteed: true, Featured: s.Featured}, Mass: hit * (1 - f), Hit: true})
		emit(Move{Draw: draw, From: s, To: up, Mass: hit * f, Hit: true, Featured: true})
	}
	return next
}

// Run starts all mass at st and applies draws steps.
func (e *Engine) Run(st Start, draws, ceiling int, obs Observer) Distribution {
	s := st.state()
	s.Pity = min(s.Pity, e.rules.HardPity)
	d := NewDistribution(s)
	for i := 1; i <= draws; i++ {
		d = e.Step(d, ceiling, i, obs)
	}
	return d
}
