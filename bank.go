// Package clausebank implements the core learning kernel of a Convolutional
// Tsetlin Machine clause bank: a bit-packed bank of propositional clauses,
// each built from Tsetlin automata, plus the inference and feedback
// routines that evaluate clauses against patches and update automaton state
// under Type I, Type II, and Type III reinforcement.
//
// The outer driver — dataset marshalling, multi-class ensemble voting,
// model I/O, configuration loading — is out of scope. This package is a
// pure in-process numeric library: no I/O, no global state beyond what the
// caller threads in explicitly via RandomSource.
package clausebank

// WordBits is the machine word width this kernel is built against: all
// masks and carry logic assume 32-bit words.
const WordBits = 32

// Config holds the parameters that are immutable for the lifetime of a
// ClauseBank.
type Config struct {
	// Features is F: the number of literals (original + negated) per patch.
	Features int
	// Clauses is C: the number of clauses in the bank.
	Clauses int
	// Patches is P: the number of patches per example.
	Patches int
	// TAStateBits is B_ta: state bits per Tsetlin automaton (typical 8).
	TAStateBits int
	// IndicatorStateBits is B_ind: state bits per Type III inclusion
	// indicator automaton. Zero disables Type III's ind_state/ledger
	// allocation; FeedbackIII panics if called on such a bank.
	IndicatorStateBits int
	// Specificity is s: shapes feedback mask density p = 1/s. Must be > 1.
	Specificity float64
	// Decay is d: Type III temperature. Must be > 0.
	Decay float64
	// UpdateProbability is update_p: per-clause Bernoulli gate on whether
	// feedback is applied this step.
	UpdateProbability float64
	// BoostTruePositiveFeedback modulates Type Ia: when true, literals that
	// fired truly are always rewarded, bypassing the random mask.
	BoostTruePositiveFeedback bool
}

// chunks returns K = ceil(F/W).
func (c Config) chunks() int {
	return (c.Features + WordBits - 1) / WordBits
}

// tailFilter returns the word mask whose low F mod W bits are 1 (or
// all-ones when F mod W == 0).
func (c Config) tailFilter() uint32 {
	rem := c.Features % WordBits
	if rem == 0 {
		return ^uint32(0)
	}
	return ^(^uint32(0) << uint(rem))
}

func (c Config) validate() error {
	switch {
	case c.Features <= 0:
		return &ConfigError{Field: "Features", Err: ErrInvalidFeatures}
	case c.Clauses <= 0:
		return &ConfigError{Field: "Clauses", Err: ErrInvalidClauses}
	case c.Patches <= 0:
		return &ConfigError{Field: "Patches", Err: ErrInvalidPatches}
	case c.TAStateBits < 2 || c.TAStateBits > 31:
		return &ConfigError{Field: "TAStateBits", Err: ErrInvalidStateBits}
	case c.IndicatorStateBits < 0 || c.IndicatorStateBits > 31:
		return &ConfigError{Field: "IndicatorStateBits", Err: ErrInvalidIndBits}
	case c.Specificity <= 1:
		return &ConfigError{Field: "Specificity", Err: ErrInvalidSpecificity}
	case c.Decay <= 0:
		return &ConfigError{Field: "Decay", Err: ErrInvalidDecay}
	case c.UpdateProbability < 0 || c.UpdateProbability > 1:
		return &ConfigError{Field: "UpdateProbability", Err: ErrInvalidUpdateProb}
	}
	return nil
}

// ClauseBank is a bit-packed bank of Config.Clauses clauses, each Config
// chunks()*Config.TAStateBits words of Tsetlin automaton state, plus —
// when Config.IndicatorStateBits > 0 — the Type III inclusion-indicator
// state and literal-polarity ledger.
type ClauseBank struct {
	cfg    Config
	chunks int
	filter uint32

	taState         []uint32
	indState        []uint32
	clauseAndTarget []uint32

	feedbackToTA     []uint32
	outputOnePatches []int

	// batchActionT is scratch for cpufeatures.go's batched eval paths: the
	// action-plane words of batchWidth clauses, transposed to [chunk][lane]
	// so the per-chunk, per-lane comparison loop walks contiguous memory
	// instead of jumping between clause-local ta_state slices.
	batchActionT [][batchWidth]uint32
}

// NewClauseBank validates cfg and allocates fresh, zero-initialized state —
// action bits start at 0 ("all exclude").
func NewClauseBank(cfg Config) (*ClauseBank, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	k := cfg.chunks()

	var indState, clauseAndTarget []uint32
	if cfg.IndicatorStateBits > 0 {
		indState = make([]uint32, cfg.Clauses*k*cfg.IndicatorStateBits)
		clauseAndTarget = make([]uint32, cfg.Clauses*k)
	}

	return NewClauseBankView(cfg, make([]uint32, cfg.Clauses*k*cfg.TAStateBits), indState, clauseAndTarget)
}

// NewClauseBankView validates cfg and builds a ClauseBank over caller-owned
// backing arrays instead of allocating fresh ones — recovered from
// original_source/tmu/ClauseBank.c, where every entry point operates on
// caller-owned pointers. This lets a driver carve disjoint clause ranges of
// one larger array into independent ClauseBank shards.
//
// indState and clauseAndTarget may both be nil when Config.IndicatorStateBits
// is 0; FeedbackIII panics if called on such a bank.
func NewClauseBankView(cfg Config, taState, indState, clauseAndTarget []uint32) (*ClauseBank, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	k := cfg.chunks()

	checkLen("taState", len(taState), cfg.Clauses*k*cfg.TAStateBits)
	if cfg.IndicatorStateBits > 0 {
		checkLen("indState", len(indState), cfg.Clauses*k*cfg.IndicatorStateBits)
		checkLen("clauseAndTarget", len(clauseAndTarget), cfg.Clauses*k)
	}

	return &ClauseBank{
		cfg:              cfg,
		chunks:           k,
		filter:           cfg.tailFilter(),
		taState:          taState,
		indState:         indState,
		clauseAndTarget:  clauseAndTarget,
		feedbackToTA:     make([]uint32, k),
		outputOnePatches: make([]int, cfg.Patches),
		batchActionT:     make([][batchWidth]uint32, k),
	}, nil
}

// Config returns the bank's immutable parameters.
func (b *ClauseBank) Config() Config { return b.cfg }

// TAState exposes the bit-sliced TA counter array for persistence or
// inspection by the driver. Row-major [clause][chunk][bitplane].
func (b *ClauseBank) TAState() []uint32 { return b.taState }

// IndState exposes the Type III inclusion-indicator array, or nil if the
// bank was built with IndicatorStateBits == 0.
func (b *ClauseBank) IndState() []uint32 { return b.indState }

// ClauseAndTarget exposes the Type III literal-polarity ledger, or nil if
// the bank was built with IndicatorStateBits == 0.
func (b *ClauseBank) ClauseAndTarget() []uint32 { return b.clauseAndTarget }

// clauseTAState returns the clause-local slice of ta_state for clause j:
// chunks*TAStateBits words.
func (b *ClauseBank) clauseTAState(j int) []uint32 {
	stride := b.chunks * b.cfg.TAStateBits
	return b.taState[j*stride : (j+1)*stride]
}

// clauseIndState returns the clause-local slice of ind_state for clause j.
func (b *ClauseBank) clauseIndState(j int) []uint32 {
	stride := b.chunks * b.cfg.IndicatorStateBits
	return b.indState[j*stride : (j+1)*stride]
}

// clauseLedger returns the clause-local slice of clause_and_target for
// clause j: one word per chunk.
func (b *ClauseBank) clauseLedger(j int) []uint32 {
	return b.clauseAndTarget[j*b.chunks : (j+1)*b.chunks]
}

// LiteralFrequency counts, over the whole bank, how many clauses include
// each of the Config.Features literals (top action bit-plane set). out
// must have length Config.Features.
func (b *ClauseBank) LiteralFrequency(out []int) {
	checkLen("out", len(out), b.cfg.Features)
	for i := range out {
		out[i] = 0
	}

	bits := b.cfg.TAStateBits
	for j := 0; j < b.cfg.Clauses; j++ {
		ta := b.clauseTAState(j)
		for lit := 0; lit < b.cfg.Features; lit++ {
			chunk := lit / WordBits
			bit := uint(lit % WordBits)
			if actionRow(ta, bits, chunk)&(1<<bit) != 0 {
				out[lit]++
			}
		}
	}
}
