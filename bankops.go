package clausebank

// PredictEval computes one output bit per clause: Predict mode,
// all-exclude-guarded. Xi has length Patches*chunks; out has length
// Clauses.
func (b *ClauseBank) PredictEval(Xi []uint32, out []uint32) {
	checkLen("Xi", len(Xi), b.cfg.Patches*b.chunks)
	checkLen("out", len(out), b.cfg.Clauses)

	if useAVX2Batch && b.cfg.Clauses >= batchWidth {
		b.predictEvalBatched(Xi, out)
		return
	}
	bits := b.cfg.TAStateBits
	for j := 0; j < b.cfg.Clauses; j++ {
		out[j] = evalPredict(b.clauseTAState(j), bits, b.chunks, b.cfg.Patches, b.filter, Xi)
	}
}

// UpdateEval computes one output bit per clause using Update mode
// (masked-out literals read as satisfied, no all-exclude rule).
// literalActive has length chunks; Xi has length Patches*chunks; out has
// length Clauses.
func (b *ClauseBank) UpdateEval(literalActive, Xi []uint32, out []uint32) {
	checkLen("literalActive", len(literalActive), b.chunks)
	checkLen("Xi", len(Xi), b.cfg.Patches*b.chunks)
	checkLen("out", len(out), b.cfg.Clauses)

	bits := b.cfg.TAStateBits
	for j := 0; j < b.cfg.Clauses; j++ {
		out[j] = evalUpdate(b.clauseTAState(j), bits, b.chunks, b.cfg.Patches, b.filter, literalActive, Xi)
	}
}

// PatchwiseEval emits one output bit per (clause, patch) using Patchwise
// mode. Xi has length Patches*chunks; out has length Clauses*Patches,
// row-major [clause][patch].
func (b *ClauseBank) PatchwiseEval(Xi []uint32, out []uint32) {
	checkLen("Xi", len(Xi), b.cfg.Patches*b.chunks)
	checkLen("out", len(out), b.cfg.Clauses*b.cfg.Patches)

	if useAVX2Batch && b.cfg.Clauses >= batchWidth {
		b.patchwiseEvalBatched(Xi, out)
		return
	}
	bits := b.cfg.TAStateBits
	for j := 0; j < b.cfg.Clauses; j++ {
		evalPatchwise(b.clauseTAState(j), bits, b.chunks, b.cfg.Patches, b.filter, Xi, out[j*b.cfg.Patches:(j+1)*b.cfg.Patches])
	}
}
