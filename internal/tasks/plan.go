package tasks

import (
	"sort"

	"github.com/desertthunder/ytsync/internal/models"
)

// findLISIndices returns the set of indices into current whose video IDs
// form the longest subsequence already in target-relative order. Those
// entries are left untouched by the plan; everything else is deleted and,
// if still wanted, re-inserted.
//
// Standard O(n²) DP over the (currentIndex, targetIndex) pairs restricted
// to IDs present in target, strictly increasing on targetIndex. Ties on
// the maximum length resolve to the earliest ending index.
func findLISIndices(current, target []string) map[int]bool {
	kept := make(map[int]bool)
	if len(current) == 0 || len(target) == 0 {
		return kept
	}

	// First occurrence wins for duplicate target IDs.
	targetPos := make(map[string]int, len(target))
	for i, id := range target {
		if _, ok := targetPos[id]; !ok {
			targetPos[id] = i
		}
	}

	type pair struct {
		currentIdx int
		targetIdx  int
	}

	var pairs []pair
	for i, id := range current {
		if pos, ok := targetPos[id]; ok {
			pairs = append(pairs, pair{currentIdx: i, targetIdx: pos})
		}
	}

	if len(pairs) == 0 {
		return kept
	}

	n := len(pairs)
	dp := make([]int, n)
	parent := make([]int, n)
	for i := range dp {
		dp[i] = 1
		parent[i] = -1
	}

	for i := 1; i < n; i++ {
		for j := 0; j < i; j++ {
			if pairs[j].targetIdx < pairs[i].targetIdx && dp[j]+1 > dp[i] {
				dp[i] = dp[j] + 1
				parent[i] = j
			}
		}
	}

	maxIdx := 0
	for i := 1; i < n; i++ {
		if dp[i] > dp[maxIdx] {
			maxIdx = i
		}
	}

	for idx := maxIdx; idx != -1; idx = parent[idx] {
		kept[pairs[idx].currentIdx] = true
	}

	return kept
}

// computeOperations derives the minimal insert/delete plan transforming the
// destination snapshot into the target order.
//
// Deletes cover items absent from target plus items present but outside
// the LIS (right content, wrong relative order). Inserts cover every target
// position whose video ID is not among the kept LIS items, sorted ascending
// by position: each insert at N shifts the tail right, so ascending order
// keeps later positions valid without recomputation.
func computeOperations(target []resolvedTrack, items []models.PlaylistItem) (inserts, deletes []models.SyncOp) {
	currentIDs := make([]string, len(items))
	for i, item := range items {
		currentIDs[i] = item.VideoID
	}

	targetIDs := make([]string, len(target))
	targetSet := make(map[string]bool, len(target))
	for i, rt := range target {
		targetIDs[i] = rt.videoID
		targetSet[rt.videoID] = true
	}

	lisIndices := findLISIndices(currentIDs, targetIDs)
	keptIDs := make(map[string]bool, len(lisIndices))
	for idx := range lisIndices {
		keptIDs[currentIDs[idx]] = true
	}

	for i, item := range items {
		if !targetSet[item.VideoID] || !lisIndices[i] {
			deletes = append(deletes, models.SyncOp{
				Kind:     models.OpDelete,
				Position: item.Position,
				VideoID:  item.VideoID,
				ItemID:   item.ItemID,
				Title:    item.Title,
			})
		}
	}

	for pos, rt := range target {
		if !keptIDs[rt.videoID] {
			inserts = append(inserts, models.SyncOp{
				Kind:     models.OpInsert,
				Position: pos,
				VideoID:  rt.videoID,
				Title:    rt.track.Title + " by " + rt.track.Artist,
			})
		}
	}

	sort.SliceStable(inserts, func(i, j int) bool {
		return inserts[i].Position < inserts[j].Position
	})

	return inserts, deletes
}
