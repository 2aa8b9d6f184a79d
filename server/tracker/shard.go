package tracker

// Split partitions the residual of progress across k independent trackers.
// Shard s receives ceil/floor shares of every pair's residual, expressed as a
// progress matrix against the same target, so the shards' slot pools are
// disjoint and together cover exactly the original residual.
func Split(target int, progress Progress, k int) ([]Progress, error) {
	if k < 1 {
		return nil, configErr(ErrBadProgress, "cannot split into %d shards", k)
	}
	names := progress.Index
	games, err := progress.reindex(names)
	if err != nil {
		return nil, err
	}
	n := len(names)
	shards := make([]Progress, k)
	for s := range shards {
		shards[s] = ZeroProgress(names)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			g := games[i*n+j]
			if i == j {
				g = target
			}
			if g < 0 || g > target {
				return nil, configErr(ErrBadProgress, "games[%s][%s]=%d outside [0, %d]", names[i], names[j], g, target)
			}
			r := target - g
			for s := range shards {
				share := r / k
				if s < r%k {
					share++
				}
				shards[s].Games[i][j] = target - share
			}
		}
	}
	return shards, nil
}
