package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"

	"matchup-arena/server/evaluator"
	"matchup-arena/server/rating"
)

// console prints progress and the final table for humans. Shards report
// from their own goroutines, so every print holds mu.
type console struct {
	mu  sync.Mutex
	w   io.Writer
	out *termenv.Output
}

func newConsole(w io.Writer, color bool) *console {
	opts := []termenv.OutputOption{}
	if !color {
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}
	return &console{w: w, out: termenv.NewOutput(w, opts...)}
}

func (c *console) bold(s string) string { return c.out.String(s).Bold().String() }
func (c *console) dim(s string) string  { return c.out.String(s).Faint().String() }
func (c *console) good(s string) string { return c.out.String(s).Foreground(c.out.Color("2")).String() }
func (c *console) warn(s string) string { return c.out.String(s).Foreground(c.out.Color("3")).String() }
func (c *console) bad(s string) string  { return c.out.String(s).Foreground(c.out.Color("1")).String() }

func (c *console) section(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printSection(title)
}

func (c *console) printSection(title string) {
	fmt.Fprintf(c.w, "\n%s %s %s\n", c.dim("──"), c.bold(title), c.dim("──"))
}

// report prints one progress line for the named shard.
func (c *console) report(label string, r evaluator.Report) {
	eta := "?"
	if r.Done > 0 {
		eta = r.ETA.Round(time.Second).String()
	}
	util := c.good(fmt.Sprintf("batch %.0f", r.MeanBatch))
	if r.LowUtilRate > 0.5 {
		util = c.warn(fmt.Sprintf("batch %.0f (%.0f%% low)", r.MeanBatch, 100*r.LowUtilRate))
	}
	line := fmt.Sprintf("%s %s %6.2f%%  %d/%d games  %s  %.0f moves/s  %.2f matchups/min  eta %s\n",
		c.dim(time.Now().Format("15:04:05")), label,
		100*r.Fraction(), r.Done, r.Done+r.Remaining, util,
		r.MoveRate, r.MatchupRate, c.bold(eta))
	if r.Ignored > 0 {
		line += fmt.Sprintf("  %s\n", c.bad(fmt.Sprintf("%d updates to closed matchups ignored", r.Ignored)))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	io.WriteString(c.w, line)
}

func (c *console) leaderboard(board []rating.Standing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printSection("Leaderboard")
	width := 4
	for _, s := range board {
		width = max(width, len(s.Name))
	}
	fmt.Fprintf(c.w, "%s\n", c.dim(fmt.Sprintf("%-*s %7s %6s %6s %7s %15s %7s", width, "name", "glicko", "rd", "elo", "score", "wilson 95%", "games")))
	for i, s := range board {
		name := fmt.Sprintf("%-*s", width, s.Name)
		if i == 0 {
			name = c.bold(name)
		}
		fmt.Fprintf(c.w, "%s %7.1f %6.1f %6.0f %7.3f   [%.3f, %.3f] %7d\n",
			name, s.Glicko.Rating, s.Glicko.RD, s.Elo, s.Score, s.WilsonLo, s.WilsonHi, s.Games)
	}
	fmt.Fprintln(c.w, c.dim(strings.Repeat("─", width+58)))
}
