package clausebank

import "testing"

func benchBank(clauses, features, patches, taBits int) *ClauseBank {
	cfg := Config{
		Features: features, Clauses: clauses, Patches: patches, TAStateBits: taBits,
		Specificity: 2, Decay: 2, UpdateProbability: 1,
	}
	b, err := NewClauseBank(cfg)
	if err != nil {
		panic(err)
	}
	for i := range b.taState {
		b.taState[i] = uint32(i*2654435761 + 7)
	}
	return b
}

func benchXi(b *ClauseBank) []uint32 {
	Xi := make([]uint32, b.cfg.Patches*b.chunks)
	for i := range Xi {
		Xi[i] = uint32(i*40503 + 11)
	}
	return Xi
}

func BenchmarkPredictEval_100Clauses_AVX2(b *testing.B) {
	bank := benchBank(100, 200, 10, 8)
	Xi := benchXi(bank)
	out := make([]uint32, bank.cfg.Clauses)
	saved := useAVX2Batch
	useAVX2Batch = true
	defer func() { useAVX2Batch = saved }()
	for b.Loop() {
		bank.PredictEval(Xi, out)
	}
}

func BenchmarkPredictEval_100Clauses_Scalar(b *testing.B) {
	bank := benchBank(100, 200, 10, 8)
	Xi := benchXi(bank)
	out := make([]uint32, bank.cfg.Clauses)
	saved := useAVX2Batch
	useAVX2Batch = false
	defer func() { useAVX2Batch = saved }()
	for b.Loop() {
		bank.PredictEval(Xi, out)
	}
}

func BenchmarkPatchwiseEval_100Clauses_AVX2(b *testing.B) {
	bank := benchBank(100, 200, 10, 8)
	Xi := benchXi(bank)
	out := make([]uint32, bank.cfg.Clauses*bank.cfg.Patches)
	saved := useAVX2Batch
	useAVX2Batch = true
	defer func() { useAVX2Batch = saved }()
	for b.Loop() {
		bank.PatchwiseEval(Xi, out)
	}
}

func BenchmarkUpdateEval_100Clauses(b *testing.B) {
	bank := benchBank(100, 200, 10, 8)
	Xi := benchXi(bank)
	literalActive := make([]uint32, bank.chunks)
	for i := range literalActive {
		literalActive[i] = ^uint32(0)
	}
	out := make([]uint32, bank.cfg.Clauses)
	for b.Loop() {
		bank.UpdateEval(literalActive, Xi, out)
	}
}

func BenchmarkFeedbackI_100Clauses(b *testing.B) {
	bank := benchBank(100, 200, 10, 8)
	Xi := benchXi(bank)
	literalActive := make([]uint32, bank.chunks)
	for i := range literalActive {
		literalActive[i] = ^uint32(0)
	}
	clauseActive := allTrue(bank.cfg.Clauses)
	rng := NewRandomSource(1)
	for b.Loop() {
		bank.FeedbackI(rng, clauseActive, literalActive, Xi)
	}
}

func BenchmarkFeedbackIII_100Clauses(b *testing.B) {
	cfg := Config{
		Features: 200, Clauses: 100, Patches: 10, TAStateBits: 8, IndicatorStateBits: 4,
		Specificity: 2, Decay: 2, UpdateProbability: 1,
	}
	bank, err := NewClauseBank(cfg)
	if err != nil {
		b.Fatalf("NewClauseBank: %v", err)
	}
	for i := range bank.taState {
		bank.taState[i] = uint32(i*2654435761 + 7)
	}
	Xi := benchXi(bank)
	literalActive := make([]uint32, bank.chunks)
	for i := range literalActive {
		literalActive[i] = ^uint32(0)
	}
	clauseActive := allTrue(bank.cfg.Clauses)
	rng := NewRandomSource(1)
	for b.Loop() {
		bank.FeedbackIII(rng, clauseActive, literalActive, Xi, true)
	}
}

func BenchmarkLiteralFrequency_1000Clauses(b *testing.B) {
	bank := benchBank(1000, 200, 10, 8)
	out := make([]int, bank.cfg.Features)
	for b.Loop() {
		bank.LiteralFrequency(out)
	}
}
