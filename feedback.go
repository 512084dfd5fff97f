package clausebank

import "math/bits"

// FeedbackI applies the Type I reward-or-erode rule to every clause that
// passes clause_active and the update_p Bernoulli gate. rng supplies both
// the per-clause gate draw and the feedback mask.
//
// The gate draw is skipped for inactive clauses (Go's || short-circuits),
// unlike ClauseBank.c's cb_type_i_feedback, which draws fast_rand() for
// every clause regardless of clause_active. Cross-language RNG stream
// reproducibility isn't a goal, so the draw counts diverging is fine.
func (b *ClauseBank) FeedbackI(rng *RandomSource, clauseActive []bool, literalActive, Xi []uint32) {
	checkLen("clauseActive", len(clauseActive), b.cfg.Clauses)
	checkLen("literalActive", len(literalActive), b.chunks)
	checkLen("Xi", len(Xi), b.cfg.Patches*b.chunks)

	taBits := b.cfg.TAStateBits
	for j := 0; j < b.cfg.Clauses; j++ {
		if !clauseActive[j] || rng.Float64() > b.cfg.UpdateProbability {
			continue
		}

		ta := b.clauseTAState(j)
		output, patch := evalFeedback(ta, taBits, b.chunks, b.cfg.Patches, b.filter, literalActive, Xi, b.outputOnePatches, rng)
		rng.FeedbackMask(b.feedbackToTA, b.cfg.Features, b.chunks, b.cfg.Specificity)

		if output == 1 {
			b.feedbackIa(ta, taBits, literalActive, Xi, patch)
		} else {
			b.feedbackIb(ta, taBits, literalActive)
		}
	}
}

// feedbackIa is the Type Ia branch (clause_output == 1): reward literals
// that fired truly, erode literals contributing to a false match.
func (b *ClauseBank) feedbackIa(ta []uint32, taBits int, literalActive, Xi []uint32, patch int) {
	xiRow := Xi[patch*b.chunks : patch*b.chunks+b.chunks]
	for k := 0; k < b.chunks; k++ {
		col := ta[k*taBits : (k+1)*taBits]
		l := literalActive[k]
		x := xiRow[k]

		if b.cfg.BoostTruePositiveFeedback {
			incColumn(col, 1, taBits, l&x)
		} else {
			incColumn(col, 1, taBits, l&x&^b.feedbackToTA[k])
		}
		decColumn(col, 1, taBits, l&^x&b.feedbackToTA[k])
	}
}

// feedbackIb is the Type Ib branch (clause_output == 0): erode every
// active literal selected by the random feedback mask, included or not.
func (b *ClauseBank) feedbackIb(ta []uint32, taBits int, literalActive []uint32) {
	for k := 0; k < b.chunks; k++ {
		col := ta[k*taBits : (k+1)*taBits]
		decColumn(col, 1, taBits, literalActive[k]&b.feedbackToTA[k])
	}
}

// FeedbackII applies the Type II falsity-sharpening rule: for clauses
// passing clause_active and the update_p Bernoulli gate that fire wrongly
// (clause matches but, per the outer algorithm, should not have), increment
// currently-excluded literals whose inclusion would have falsified the
// clause on the chosen patch. No decrement step, no random mask.
func (b *ClauseBank) FeedbackII(rng *RandomSource, clauseActive []bool, literalActive, Xi []uint32) {
	checkLen("clauseActive", len(clauseActive), b.cfg.Clauses)
	checkLen("literalActive", len(literalActive), b.chunks)
	checkLen("Xi", len(Xi), b.cfg.Patches*b.chunks)

	taBits := b.cfg.TAStateBits
	for j := 0; j < b.cfg.Clauses; j++ {
		if !clauseActive[j] || rng.Float64() > b.cfg.UpdateProbability {
			continue
		}

		ta := b.clauseTAState(j)
		output, patch := evalFeedback(ta, taBits, b.chunks, b.cfg.Patches, b.filter, literalActive, Xi, b.outputOnePatches, rng)
		if output != 1 {
			continue
		}

		xiRow := Xi[patch*b.chunks : patch*b.chunks+b.chunks]
		for k := 0; k < b.chunks; k++ {
			col := ta[k*taBits : (k+1)*taBits]
			action := actionRow(ta, taBits, k)
			incColumn(col, 1, taBits, literalActive[k]&^xiRow[k]&^action)
		}
	}
}

// FeedbackIII applies the Type III meta-inclusion rule with its
// clause_and_target polarity ledger. Requires the bank to have been built
// with Config.IndicatorStateBits > 0; panics otherwise.
func (b *ClauseBank) FeedbackIII(rng *RandomSource, clauseActive []bool, literalActive, Xi []uint32, target bool) {
	if b.cfg.IndicatorStateBits == 0 {
		panic("clausebank: FeedbackIII requires Config.IndicatorStateBits > 0")
	}
	checkLen("clauseActive", len(clauseActive), b.cfg.Clauses)
	checkLen("literalActive", len(literalActive), b.chunks)
	checkLen("Xi", len(Xi), b.cfg.Patches*b.chunks)

	taBits := b.cfg.TAStateBits
	indBits := b.cfg.IndicatorStateBits

	for j := 0; j < b.cfg.Clauses; j++ {
		if !clauseActive[j] {
			continue
		}

		ta := b.clauseTAState(j)
		ind := b.clauseIndState(j)
		ledger := b.clauseLedger(j)

		output, patch := evalFeedback(ta, taBits, b.chunks, b.cfg.Patches, b.filter, literalActive, Xi, b.outputOnePatches, rng)

		if output == 1 {
			b.feedbackIIIMatched(rng, ind, ledger, literalActive, Xi, patch, target)
		} else {
			b.feedbackIIIUnmatched(rng, ta, ledger, literalActive, Xi, target)
		}

		// Unlike FeedbackI's gate, this draw is unconditional for every
		// clause that passed clauseActive above — it matches
		// cb_type_iii_feedback's draw order exactly, since clauseActive and
		// update_p are two separate ifs here rather than one short-circuited
		// condition.
		if rng.Float64() > b.cfg.UpdateProbability {
			continue
		}
		for k := 0; k < b.chunks; k++ {
			taCol := ta[k*taBits : (k+1)*taBits]
			top := ind[k*indBits+indBits-1]
			decColumn(taCol, 1, taBits, literalActive[k]&^top)
		}
	}
}

// feedbackIIIMatched is the clause_output == 1 branch: grow the
// inclusion indicator where the ledger bit and Xi are both set (only on
// positive targets, gated by the 1-1/d draw), erode it where Xi is set but
// the ledger bit is clear, then invert the
// ledger. The inversion is asymmetric by design — see DESIGN.md Open
// Question 1: on positive targets the ledger flips, on negative targets it
// only grows.
func (b *ClauseBank) feedbackIIIMatched(rng *RandomSource, ind, ledger, literalActive, Xi []uint32, patch int, target bool) {
	indBits := b.cfg.IndicatorStateBits
	xiRow := Xi[patch*b.chunks : patch*b.chunks+b.chunks]

	if target && rng.Float64() <= 1-1/b.cfg.Decay {
		for k := 0; k < b.chunks; k++ {
			col := ind[k*indBits : (k+1)*indBits]
			incColumn(col, 1, indBits, literalActive[k]&ledger[k]&xiRow[k])
		}
	}

	for k := 0; k < b.chunks; k++ {
		col := ind[k*indBits : (k+1)*indBits]
		decColumn(col, 1, indBits, literalActive[k]&^ledger[k]&xiRow[k])
	}

	for k := 0; k < b.chunks; k++ {
		add := ^ledger[k]
		var remove uint32
		if target {
			remove = ledger[k]
		}
		ledger[k] = (ledger[k] | add) &^ remove
	}
}

// feedbackIIIUnmatched is the clause_output == 0 branch: find the single
// literal whose disagreement with Xi is the clause's only obstacle to
// matching, and toggle its ledger bit.
func (b *ClauseBank) feedbackIIIUnmatched(rng *RandomSource, ta, ledger, literalActive, Xi []uint32, target bool) {
	lit := b.findOffendingLiteral(rng, ta, literalActive, Xi)
	if lit < 0 {
		return
	}
	chunk := lit / WordBits
	bit := uint32(1) << uint(lit%WordBits)

	if ledger[chunk]&bit == 0 {
		ledger[chunk] |= bit
	} else if target {
		ledger[chunk] &^= bit
	}
}

// findOffendingLiteral implements the single-offending-literal search:
// scan all patches, for each compute the action bits whose literal
// value disagrees with the patch (off = (action & (Xi | ^L)) ^ action). A
// patch with more than one such bit contributes no candidate; a patch with
// exactly one contributes that bit's literal id. If every contributing
// patch agrees (which, being per-patch values, means collecting one id per
// qualifying patch), one is chosen uniformly at random. Returns a literal
// id in [0, Features) or -1 if no patch qualifies.
//
// The non-tail chunk loop below breaks out of itself (not the patch loop)
// as soon as a patch accumulates a second offending bit; the tail chunk is
// then still evaluated unconditionally, exactly as
// original_source/tmu/ClauseBank.c's cb_calculate_clause_output_single_false_literal
// does — see DESIGN.md Open Question 2.
func (b *ClauseBank) findOffendingLiteral(rng *RandomSource, ta, literalActive, Xi []uint32) int {
	taBits := b.cfg.TAStateBits
	candidates := b.outputOnePatches[:0]

	for p := 0; p < b.cfg.Patches; p++ {
		xiRow := Xi[p*b.chunks : p*b.chunks+b.chunks]
		maxOne := true
		haveOne := false
		offendingID := 0

		for k := 0; k < b.chunks-1; k++ {
			action := actionRow(ta, taBits, k)
			x := xiRow[k] | ^literalActive[k]
			off := (action & x) ^ action
			if off&(off-1) != 0 {
				maxOne = false
				break
			} else if off != 0 {
				if !haveOne {
					haveOne = true
					offendingID = k*WordBits + bits.TrailingZeros32(off)
				} else {
					maxOne = false
					break
				}
			}
		}

		// Tail chunk: evaluated unconditionally (see doc comment above).
		k := b.chunks - 1
		action := actionRow(ta, taBits, k)
		x := xiRow[k] | ^literalActive[k]
		off := (action & x & b.filter) ^ (action & b.filter)
		if off&(off-1) != 0 {
			maxOne = false
		} else if off != 0 {
			if !haveOne {
				haveOne = true
				offendingID = k*WordBits + bits.TrailingZeros32(off)
			} else {
				maxOne = false
			}
		}

		if maxOne && haveOne {
			candidates = append(candidates, offendingID)
		}
	}

	if len(candidates) == 0 {
		return -1
	}
	return candidates[rng.UniformIntn(len(candidates))]
}
