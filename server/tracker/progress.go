package tracker

import "fmt"

// Progress is a labelled square matrix: Games[i][j] counts games of
// Index[i] (seat 0) against Index[j] (seat 1) that are already done.
type Progress struct {
	Index []string
	Games [][]int
}

// ZeroProgress is the fresh-run matrix over names.
func ZeroProgress(names []string) Progress {
	g := make([][]int, len(names))
	for i := range g {
		g[i] = make([]int, len(names))
	}
	return Progress{Index: append([]string(nil), names...), Games: g}
}

// Clone deep-copies p.
func (p Progress) Clone() Progress {
	out := Progress{Index: append([]string(nil), p.Index...), Games: make([][]int, len(p.Games))}
	for i, row := range p.Games {
		out.Games[i] = append([]int(nil), row...)
	}
	return out
}

// Sum of every entry.
func (p Progress) Sum() int {
	total := 0
	for _, row := range p.Games {
		for _, v := range row {
			total += v
		}
	}
	return total
}

// reindex returns p's entries as a flat row-major n*n grid in names order.
func (p Progress) reindex(names []string) ([]int, error) {
	n := len(names)
	pos := make(map[string]int, n)
	for i, name := range names {
		if _, dup := pos[name]; dup {
			return nil, configErr(ErrIndexMismatch, "duplicate agent %q", name)
		}
		pos[name] = i
	}
	if len(p.Index) != n {
		return nil, configErr(ErrIndexMismatch, "progress has %d labels, want %d", len(p.Index), n)
	}
	if len(p.Games) != n {
		return nil, configErr(ErrIndexMismatch, "progress has %d rows, want %d", len(p.Games), n)
	}
	order := make([]int, n) // order[k] = position of p.Index[k] in names
	seen := make(map[string]bool, n)
	for k, label := range p.Index {
		i, ok := pos[label]
		if !ok {
			return nil, configErr(ErrIndexMismatch, "progress label %q is not an agent", label)
		}
		if seen[label] {
			return nil, configErr(ErrIndexMismatch, "progress label %q repeated", label)
		}
		seen[label] = true
		order[k] = i
	}
	flat := make([]int, n*n)
	for r, row := range p.Games {
		if len(row) != n {
			return nil, configErr(ErrIndexMismatch, "progress row %q has %d columns, want %d", p.Index[r], len(row), n)
		}
		for c, v := range row {
			flat[order[r]*n+order[c]] = v
		}
	}
	return flat, nil
}

func (p Progress) String() string {
	return fmt.Sprintf("progress(%d agents, %d games)", len(p.Index), p.Sum())
}
