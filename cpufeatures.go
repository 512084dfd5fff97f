package clausebank

import "golang.org/x/sys/cpu"

// batchWidth is the number of clauses processed per transposed group in the
// AVX2-gated fast path.
const batchWidth = 4

// useAVX2Batch indicates whether the host supports AVX2, detected once at
// package init and used to choose between the batched and scalar clause
// evaluation loops: a runtime capability probe gating a fast path with a
// numerically identical scalar fallback, not a correctness fork.
var useAVX2Batch bool

func init() {
	useAVX2Batch = cpu.X86.HasAVX2
}

// boolToWord converts a match test to an all-ones-or-zero mask so the batch
// loops below combine lanes with & and | instead of branching on each one —
// the shape an auto-vectorizer needs to fold the per-lane comparison into a
// single SIMD compare-and-AND.
func boolToWord(ok bool) uint32 {
	if ok {
		return ^uint32(0)
	}
	return 0
}

// transposeActionPlanes fills b.batchActionT[k][g] with the action-plane
// word of chunk k for clause j+g, for g in [0, batchWidth). Unlike a
// clause-major layout (each clause's chunks contiguous, but the next
// clause's chunk k far away in memory), this chunk-major transpose puts the
// four clauses' word for the same chunk next to each other, so the inner
// comparison loop below walks one contiguous [4]uint32 at a time instead of
// striding across b.taState.
func (b *ClauseBank) transposeActionPlanes(j, bits int) {
	for k := 0; k < b.chunks; k++ {
		for g := 0; g < batchWidth; g++ {
			b.batchActionT[k][g] = actionRow(b.clauseTAState(j+g), bits, k)
		}
	}
}

// predictEvalBatched computes PredictEval for batchWidth clauses at a time.
// It transposes their action planes once, then for every patch walks
// chunks outermost and lanes innermost, accumulating a per-lane match mask
// with branch-free &/| instead of evalPredict's per-clause early return —
// the loop never exits a lane early, so every iteration does the same work
// regardless of which lanes have already matched, the shape a SIMD compare
// needs.
func (b *ClauseBank) predictEvalBatched(Xi []uint32, out []uint32) {
	bits := b.cfg.TAStateBits
	patches := b.cfg.Patches
	filter := b.filter
	lastChunk := b.chunks - 1

	j := 0
	for ; j+batchWidth <= b.cfg.Clauses; j += batchWidth {
		b.transposeActionPlanes(j, bits)
		actionT := b.batchActionT

		var anyIncluded [batchWidth]uint32
		for k := 0; k < lastChunk; k++ {
			for g := 0; g < batchWidth; g++ {
				anyIncluded[g] |= actionT[k][g]
			}
		}
		for g := 0; g < batchWidth; g++ {
			anyIncluded[g] |= actionT[lastChunk][g] & filter
		}

		var matched [batchWidth]uint32
		for p := 0; p < patches; p++ {
			row := Xi[p*b.chunks : p*b.chunks+b.chunks]
			var patchOK [batchWidth]uint32
			for g := range patchOK {
				patchOK[g] = ^uint32(0)
			}
			for k := 0; k < lastChunk; k++ {
				x := row[k]
				for g := 0; g < batchWidth; g++ {
					a := actionT[k][g]
					patchOK[g] &= boolToWord(a&x == a)
				}
			}
			x := row[lastChunk]
			for g := 0; g < batchWidth; g++ {
				a := actionT[lastChunk][g]
				patchOK[g] &= boolToWord(a&x&filter == a&filter)
			}
			for g := 0; g < batchWidth; g++ {
				matched[g] |= patchOK[g]
			}
		}

		for g := 0; g < batchWidth; g++ {
			if matched[g] != 0 && anyIncluded[g] != 0 {
				out[j+g] = 1
			} else {
				out[j+g] = 0
			}
		}
	}

	for ; j < b.cfg.Clauses; j++ {
		out[j] = evalPredict(b.clauseTAState(j), bits, b.chunks, patches, filter, Xi)
	}
}

// patchwiseEvalBatched is PatchwiseEval's batched counterpart: same
// transpose-then-lane-walk shape as predictEvalBatched, but every patch's
// per-lane result is written out directly instead of folded into a single
// match bit, and there is no all-exclude guard (matching evalPatchwise).
func (b *ClauseBank) patchwiseEvalBatched(Xi []uint32, out []uint32) {
	bits := b.cfg.TAStateBits
	patches := b.cfg.Patches
	filter := b.filter
	lastChunk := b.chunks - 1

	j := 0
	for ; j+batchWidth <= b.cfg.Clauses; j += batchWidth {
		b.transposeActionPlanes(j, bits)
		actionT := b.batchActionT

		for p := 0; p < patches; p++ {
			row := Xi[p*b.chunks : p*b.chunks+b.chunks]
			var patchOK [batchWidth]uint32
			for g := range patchOK {
				patchOK[g] = ^uint32(0)
			}
			for k := 0; k < lastChunk; k++ {
				x := row[k]
				for g := 0; g < batchWidth; g++ {
					a := actionT[k][g]
					patchOK[g] &= boolToWord(a&x == a)
				}
			}
			x := row[lastChunk]
			for g := 0; g < batchWidth; g++ {
				a := actionT[lastChunk][g]
				patchOK[g] &= boolToWord(a&x&filter == a&filter)
			}
			for g := 0; g < batchWidth; g++ {
				out[(j+g)*patches+p] = patchOK[g] & 1
			}
		}
	}

	for ; j < b.cfg.Clauses; j++ {
		evalPatchwise(b.clauseTAState(j), bits, b.chunks, patches, filter, Xi, out[j*patches:(j+1)*patches])
	}
}
