package ranking

// MaxMovesPerChunk is the largest number of moves the platform accepts in
// a single reorder mutation.
const MaxMovesPerChunk = 250

// Move is one positional reorder instruction: put the product at the
// given zero-based position.
type Move struct {
	ID          string
	NewPosition int
}

// BuildMoves converts a desired ordering into positional moves, capped to
// the first topN products. topN below zero or beyond the list length
// clamps to the list length; zero yields no moves.
func BuildMoves(ids []string, topN int) []Move {
	if topN < 0 || topN > len(ids) {
		topN = len(ids)
	}
	moves := make([]Move, 0, topN)
	for i := 0; i < topN; i++ {
		moves = append(moves, Move{ID: ids[i], NewPosition: i})
	}
	return moves
}

// ChunkMoves splits moves into submission chunks of at most size entries.
// A size below one falls back to MaxMovesPerChunk.
func ChunkMoves(moves []Move, size int) [][]Move {
	if size < 1 {
		size = MaxMovesPerChunk
	}
	var chunks [][]Move
	for start := 0; start < len(moves); start += size {
		end := start + size
		if end > len(moves) {
			end = len(moves)
		}
		chunks = append(chunks, moves[start:end])
	}
	return chunks
}
