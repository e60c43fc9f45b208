package alignment

import (
	"context"
	"fmt"
	"strings"

	"github.com/algobio/dnacore/internal/domain/model"
	"github.com/algobio/dnacore/internal/domain/sequence"
)

// cancelCheckStride bounds how many seed positions are scanned between
// context checks.
const cancelCheckStride = 64

// seedHit is an exact k-mer shared by both inputs.
type seedHit struct {
	pos1, pos2 int
}

// extension is a scored ungapped window.
type extension struct {
	win   Window
	score int
}

// local runs the simplified seed-and-extend strategy: exact k-mer seeds from
// s1 are looked up while scanning s2, each hit is extended without gaps, and
// the single best window is reported. Without any shared k-mer the best
// full-length diagonal placement of the shorter input is used instead.
func (a *Aligner) local(ctx context.Context, s1, s2 string) (Result, error) {
	best, found, err := a.bestSeedExtension(ctx, s1, s2)
	if err != nil {
		return Result{}, err
	}
	if !found {
		best, err = a.bestDiagonal(ctx, s1, s2)
		if err != nil {
			return Result{}, err
		}
	}

	w := best.win
	win1, win2 := s1[w.Start1:w.End1], s2[w.Start2:w.End2]
	if len(win1) != len(win2) || len(win1) == 0 {
		return Result{}, model.NewComputation("alignment.local", "window sizes %d and %d", len(win1), len(win2))
	}
	if got := a.scoring.rescore(win1, win2); got != best.score {
		return Result{}, model.NewComputation("alignment.local", "window scores %d, extension scored %d", got, best.score)
	}

	al1, al2 := layout(s1, s2, w)
	return Result{
		Algorithm:       Local,
		Aligned1:        al1,
		Aligned2:        al2,
		Score:           best.score,
		IdentityPercent: identity(win1, win2),
		Window:          &w,
	}, nil
}

// bestSeedExtension indexes the k-mers of s1, scans s2 for exact hits and
// extends each one. Hits inside a window already extended on the same
// diagonal are skipped. A strictly better score replaces the current best, so
// the first window found wins ties.
func (a *Aligner) bestSeedExtension(ctx context.Context, s1, s2 string) (extension, bool, error) {
	k := a.seedLength
	if k > len(s1) || k > len(s2) {
		return extension{}, false, nil
	}

	index := make(map[string][]int, len(s1)-k+1)
	for i := 0; i+k <= len(s1); i++ {
		kmer := s1[i : i+k]
		index[kmer] = append(index[kmer], i)
	}

	var (
		best    extension
		found   bool
		covered = make(map[int]int) // diagonal pos1-pos2 -> exclusive end in s1
	)
	for j := 0; j+k <= len(s2); j++ {
		if j%cancelCheckStride == 0 {
			if err := ctx.Err(); err != nil {
				return extension{}, false, fmt.Errorf("local alignment interrupted at position %d: %w", j, err)
			}
		}
		for _, i := range index[s2[j:j+k]] {
			diag := i - j
			if end, ok := covered[diag]; ok && i < end {
				continue
			}
			ext := a.extend(s1, s2, seedHit{pos1: i, pos2: j})
			covered[diag] = ext.win.End1
			if !found || ext.score > best.score {
				best, found = ext, true
			}
		}
	}
	return best, found, nil
}

// extend grows a seed to the right and then to the left, one base at a time.
// Each direction stops after window consecutive steps that fail to raise its
// best gain and is trimmed back to that best point.
func (a *Aligner) extend(s1, s2 string, h seedHit) extension {
	k := a.seedLength
	seedScore := 0
	for t := 0; t < k; t++ {
		seedScore += a.scoring.pair(s1[h.pos1+t], s2[h.pos2+t])
	}

	right, rightLen := a.gain(func(step int) (byte, byte, bool) {
		i, j := h.pos1+k+step, h.pos2+k+step
		if i >= len(s1) || j >= len(s2) {
			return 0, 0, false
		}
		return s1[i], s2[j], true
	})
	left, leftLen := a.gain(func(step int) (byte, byte, bool) {
		i, j := h.pos1-1-step, h.pos2-1-step
		if i < 0 || j < 0 {
			return 0, 0, false
		}
		return s1[i], s2[j], true
	})

	return extension{
		win: Window{
			Start1: h.pos1 - leftLen,
			End1:   h.pos1 + k + rightLen,
			Start2: h.pos2 - leftLen,
			End2:   h.pos2 + k + rightLen,
		},
		score: seedScore + right + left,
	}
}

// gain walks one direction and returns the best cumulative score and the
// number of steps needed to reach it.
func (a *Aligner) gain(at func(step int) (byte, byte, bool)) (int, int) {
	run, best, bestLen, since := 0, 0, 0, 0
	for step := 0; ; step++ {
		x, y, ok := at(step)
		if !ok {
			break
		}
		run += a.scoring.pair(x, y)
		if run > best {
			best, bestLen, since = run, step+1, 0
			continue
		}
		since++
		if since >= a.window {
			break
		}
	}
	return best, bestLen
}

// bestDiagonal slides the shorter input along the longer one and keeps the
// ungapped placement with the highest score; the lowest offset wins ties.
func (a *Aligner) bestDiagonal(ctx context.Context, s1, s2 string) (extension, error) {
	short, long := s1, s2
	swapped := false
	if len(short) > len(long) {
		short, long = long, short
		swapped = true
	}

	bestOff, bestScore := 0, 0
	for off := 0; off+len(short) <= len(long); off++ {
		if off%cancelCheckStride == 0 {
			if err := ctx.Err(); err != nil {
				return extension{}, fmt.Errorf("local alignment interrupted at offset %d: %w", off, err)
			}
		}
		score := 0
		for t := 0; t < len(short); t++ {
			score += a.scoring.pair(short[t], long[off+t])
		}
		if off == 0 || score > bestScore {
			bestOff, bestScore = off, score
		}
	}

	w := Window{Start1: 0, End1: len(short), Start2: bestOff, End2: bestOff + len(short)}
	if swapped {
		w = Window{Start1: bestOff, End1: bestOff + len(short), Start2: 0, End2: len(short)}
	}
	return extension{win: w, score: bestScore}, nil
}

// layout renders both inputs in full. Bases outside the window are set
// against gaps so that only window columns pair bases.
func layout(s1, s2 string, w Window) (string, string) {
	gaps := func(n int) string { return strings.Repeat(string(sequence.Gap), n) }

	var b1, b2 strings.Builder
	total := len(s1) + len(s2) - w.Len()
	b1.Grow(total)
	b2.Grow(total)

	b1.WriteString(s1[:w.Start1])
	b1.WriteString(gaps(w.Start2))
	b2.WriteString(gaps(w.Start1))
	b2.WriteString(s2[:w.Start2])

	b1.WriteString(s1[w.Start1:w.End1])
	b2.WriteString(s2[w.Start2:w.End2])

	b1.WriteString(s1[w.End1:])
	b1.WriteString(gaps(len(s2) - w.End2))
	b2.WriteString(gaps(len(s1) - w.End1))
	b2.WriteString(s2[w.End2:])

	return b1.String(), b2.String()
}
