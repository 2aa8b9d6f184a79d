package main

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchup-arena/server/evaluator"
)

func TestConsoleReportsFromShardsDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	con := newConsole(&buf, false)

	const shards, reports = 8, 50
	var wg sync.WaitGroup
	for i := 0; i < shards; i++ {
		wg.Add(1)
		go func(label string) {
			defer wg.Done()
			for j := 0; j < reports; j++ {
				con.report(label, evaluator.Report{Done: j, Remaining: reports - j, ETA: time.Second, Ignored: 1})
			}
		}(fmt.Sprintf("shard-%d", i))
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2*shards*reports)
	for k := 0; k < len(lines); k += 2 {
		assert.Contains(t, lines[k], "shard-")
		assert.Equal(t, "  1 updates to closed matchups ignored", lines[k+1])
	}
}

func TestConsoleLeaderboardPlainWhenColorOff(t *testing.T) {
	var buf bytes.Buffer
	con := newConsole(&buf, false)
	con.section("run")
	con.leaderboard(nil)
	assert.NotContains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "Leaderboard")
}
