package alignment

import (
	"context"
	"fmt"

	"github.com/algobio/dnacore/internal/domain/model"
	"github.com/algobio/dnacore/internal/domain/sequence"
	"github.com/algobio/dnacore/pkg/metrics"
)

// Traceback moves recorded during the forward pass.
const (
	moveDiag byte = iota
	moveUp        // consume a, gap in b
	moveLeft      // consume b, gap in a
)

// global runs Needleman–Wunsch. Scores live in two rolling rows; the chosen
// move per cell is kept in a byte matrix for the traceback. On ties the move
// order is diagonal, then up, then left.
func (a *Aligner) global(ctx context.Context, s1, s2 string) (Result, error) {
	n, m := len(s1), len(s2)
	cols := m + 1
	gap := a.scoring.Gap

	moves := make([]byte, (n+1)*cols)
	prev := make([]int, cols)
	curr := make([]int, cols)

	for j := 1; j <= m; j++ {
		prev[j] = j * gap
		moves[j] = moveLeft
	}

	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("global alignment interrupted at row %d: %w", i, err)
		}
		row := i * cols
		curr[0] = i * gap
		moves[row] = moveUp
		x := s1[i-1]
		for j := 1; j <= m; j++ {
			best := prev[j-1] + a.scoring.pair(x, s2[j-1])
			move := moveDiag
			if up := prev[j] + gap; up > best {
				best, move = up, moveUp
			}
			if left := curr[j-1] + gap; left > best {
				best, move = left, moveLeft
			}
			curr[j] = best
			moves[row+j] = move
		}
		prev, curr = curr, prev
	}
	score := prev[m]
	metrics.RecordAlignmentCells(float64(n) * float64(m))

	al1, al2 := traceback(s1, s2, moves, cols)
	if got := a.scoring.rescore(al1, al2); got != score {
		return Result{}, model.NewComputation("alignment.global", "traceback scores %d, matrix scores %d", got, score)
	}

	return Result{
		Algorithm:       Global,
		Aligned1:        al1,
		Aligned2:        al2,
		Score:           score,
		IdentityPercent: identity(al1, al2),
	}, nil
}

// traceback walks the move matrix from (n,m) back to (0,0).
func traceback(s1, s2 string, moves []byte, cols int) (string, string) {
	i, j := len(s1), len(s2)
	buf1 := make([]byte, 0, i+j)
	buf2 := make([]byte, 0, i+j)
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && moves[i*cols+j] == moveDiag:
			buf1 = append(buf1, s1[i-1])
			buf2 = append(buf2, s2[j-1])
			i--
			j--
		case i > 0 && (j == 0 || moves[i*cols+j] == moveUp):
			buf1 = append(buf1, s1[i-1])
			buf2 = append(buf2, sequence.Gap)
			i--
		default:
			buf1 = append(buf1, sequence.Gap)
			buf2 = append(buf2, s2[j-1])
			j--
		}
	}
	reverse(buf1)
	reverse(buf2)
	return string(buf1), string(buf2)
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
