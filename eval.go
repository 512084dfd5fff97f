package clausebank

// EvalMode selects one of the four clause evaluation variants. All four
// share the same chunked conjunction-over-action-bits structure and differ
// only in how the per-chunk literal value X is formed and what gets emitted.
type EvalMode int

const (
	// ModePredict is the all-exclude-guarded single-bit vote used at
	// inference time.
	ModePredict EvalMode = iota
	// ModeUpdate folds literal_active into X (masked-out literals read as
	// satisfied) and does not apply the all-exclude rule.
	ModeUpdate
	// ModeFeedback is ModeUpdate's X rule plus the full set of matching
	// patches, one of which is chosen uniformly at random.
	ModeFeedback
	// ModePatchwise emits one bit per patch with ModePredict's X rule.
	ModePatchwise
)

// actionRow returns, for chunk k of a clause-local ta_state slice ta (length
// chunks*bits), the action bit-plane word — the top bit-plane of each
// counter.
func actionRow(ta []uint32, bits, k int) uint32 {
	return ta[k*bits+bits-1]
}

// chunkMatches reports whether chunk k of a clause's action bits is a subset
// of x, tail-masked by filter for the last chunk. This is the single
// equation every mode shares; only the derivation of x differs between
// modes.
func chunkMatches(ta []uint32, bits, chunks, k int, filter, x uint32) bool {
	action := actionRow(ta, bits, k)
	if k == chunks-1 {
		return action&x&filter == action&filter
	}
	return action&x == action
}

// literalValuePredict returns Xi[patch,k] unmodified — the X used by
// ModePredict and ModePatchwise.
func literalValuePredict(xiRow []uint32, k int) uint32 {
	return xiRow[k]
}

// literalValueMasked returns Xi[patch,k] | ^literal_active[k] — the X used
// by ModeUpdate and ModeFeedback, where a masked-out (inactive) literal is
// treated as satisfied regardless of Xi.
func literalValueMasked(xiRow, literalActive []uint32, k int) uint32 {
	return xiRow[k] | ^literalActive[k]
}

// clauseMatchesPatch conjuncts chunkMatches across all chunks of one patch
// row of Xi, using the masked literal value when literalActive is non-nil.
func clauseMatchesPatch(ta []uint32, bits, chunks int, filter uint32, xiRow, literalActive []uint32) bool {
	for k := 0; k < chunks; k++ {
		var x uint32
		if literalActive != nil {
			x = literalValueMasked(xiRow, literalActive, k)
		} else {
			x = literalValuePredict(xiRow, k)
		}
		if !chunkMatches(ta, bits, chunks, k, filter, x) {
			return false
		}
	}
	return true
}

// allExclude reports whether every action bit of the clause (across all
// chunks, tail-masked) is zero. Checked only by ModePredict: a clause with
// no included literals never votes at inference time.
func allExclude(ta []uint32, bits, chunks int, filter uint32) bool {
	for k := 0; k < chunks-1; k++ {
		if actionRow(ta, bits, k) != 0 {
			return false
		}
	}
	return actionRow(ta, bits, chunks-1)&filter == 0
}

// evalPredict implements Predict mode: 1 iff any patch matches and the
// clause is not all-exclude.
func evalPredict(ta []uint32, bits, chunks, patches int, filter uint32, Xi []uint32) uint32 {
	if allExclude(ta, bits, chunks, filter) {
		return 0
	}
	for p := 0; p < patches; p++ {
		row := Xi[p*chunks : p*chunks+chunks]
		if clauseMatchesPatch(ta, bits, chunks, filter, row, nil) {
			return 1
		}
	}
	return 0
}

// evalUpdate implements Update mode: 1 iff any patch matches, with
// masked-out literals treated as satisfied. Deliberately does
// not apply the all-exclude rule — callers relying on UpdateEval as a
// feedback prelude expect that historical behavior.
func evalUpdate(ta []uint32, bits, chunks, patches int, filter uint32, literalActive, Xi []uint32) uint32 {
	for p := 0; p < patches; p++ {
		row := Xi[p*chunks : p*chunks+chunks]
		if clauseMatchesPatch(ta, bits, chunks, filter, row, literalActive) {
			return 1
		}
	}
	return 0
}

// evalPatchwise implements Patchwise mode: one output bit per patch,
// ModePredict's (unmasked) X rule, written into out[0:patches].
func evalPatchwise(ta []uint32, bits, chunks, patches int, filter uint32, Xi []uint32, out []uint32) {
	for p := 0; p < patches; p++ {
		row := Xi[p*chunks : p*chunks+chunks]
		if clauseMatchesPatch(ta, bits, chunks, filter, row, nil) {
			out[p] = 1
		} else {
			out[p] = 0
		}
	}
}

// evalFeedback implements Feedback mode: gathers every
// matching patch (masked X rule, like Update) into scratch, then — if any
// matched — picks one uniformly at random via rng, the same PRNG stream used
// for feedback masks. Returns (clauseOutput, clausePatch); clausePatch is
// undefined when clauseOutput is 0, matching the C source's "only read
// clause_patch after checking clause_output."
func evalFeedback(ta []uint32, bits, chunks, patches int, filter uint32, literalActive, Xi []uint32, scratch []int, rng *RandomSource) (clauseOutput uint32, clausePatch int) {
	n := 0
	for p := 0; p < patches; p++ {
		row := Xi[p*chunks : p*chunks+chunks]
		if clauseMatchesPatch(ta, bits, chunks, filter, row, literalActive) {
			scratch[n] = p
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return 1, scratch[rng.UniformIntn(n)]
}
