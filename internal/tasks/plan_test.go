package tasks

import (
	"testing"

	"github.com/desertthunder/ytsync/internal/models"
)

func resolved(pairs ...[2]string) []resolvedTrack {
	var target []resolvedTrack
	for _, p := range pairs {
		target = append(target, resolvedTrack{
			track:   models.Track{Title: p[0], Artist: "Artist"},
			videoID: p[1],
		})
	}
	return target
}

func items(ids ...string) []models.PlaylistItem {
	var out []models.PlaylistItem
	for i, id := range ids {
		out = append(out, models.PlaylistItem{
			ItemID:   "item-" + id,
			VideoID:  id,
			Title:    "Video " + id,
			Position: i,
		})
	}
	return out
}

func TestFindLISIndices(t *testing.T) {
	tests := []struct {
		name    string
		current []string
		target  []string
		want    map[int]bool
	}{
		{
			name:    "identical order keeps everything",
			current: []string{"a", "b", "c"},
			target:  []string{"a", "b", "c"},
			want:    map[int]bool{0: true, 1: true, 2: true},
		},
		{
			name:    "empty current",
			current: nil,
			target:  []string{"a"},
			want:    map[int]bool{},
		},
		{
			name:    "empty target",
			current: []string{"a"},
			target:  nil,
			want:    map[int]bool{},
		},
		{
			name:    "no overlap",
			current: []string{"x", "y"},
			target:  []string{"a", "b"},
			want:    map[int]bool{},
		},
		{
			name:    "one swapped pair keeps the longer run",
			current: []string{"a", "c", "b", "d"},
			target:  []string{"a", "b", "c", "d"},
			want:    map[int]bool{0: true, 1: true, 3: true},
		},
		{
			// All runs have length 1; the tie resolves to the earliest
			// ending index, so the first item stays put.
			name:    "fully reversed keeps a single item",
			current: []string{"c", "b", "a"},
			target:  []string{"a", "b", "c"},
			want:    map[int]bool{0: true},
		},
		{
			name:    "extra items outside target are ignored",
			current: []string{"a", "x", "b"},
			target:  []string{"a", "b"},
			want:    map[int]bool{0: true, 2: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findLISIndices(tt.current, tt.target)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d kept indices, got %d (%v)", len(tt.want), len(got), got)
			}
			for idx := range tt.want {
				if !got[idx] {
					t.Errorf("expected index %d to be kept, got %v", idx, got)
				}
			}
		})
	}
}

func TestComputeOperations(t *testing.T) {
	t.Run("already in sync yields no operations", func(t *testing.T) {
		inserts, deletes := computeOperations(
			resolved([2]string{"Song A", "a"}, [2]string{"Song B", "b"}),
			items("a", "b"),
		)
		if len(inserts) != 0 || len(deletes) != 0 {
			t.Errorf("expected empty plan, got %d inserts %d deletes", len(inserts), len(deletes))
		}
	})

	t.Run("empty destination inserts everything in order", func(t *testing.T) {
		inserts, deletes := computeOperations(
			resolved([2]string{"Song A", "a"}, [2]string{"Song B", "b"}),
			nil,
		)
		if len(deletes) != 0 {
			t.Fatalf("expected no deletes, got %d", len(deletes))
		}
		if len(inserts) != 2 {
			t.Fatalf("expected 2 inserts, got %d", len(inserts))
		}
		for i, op := range inserts {
			if op.Position != i {
				t.Errorf("insert %d: expected position %d, got %d", i, i, op.Position)
			}
			if op.Kind != models.OpInsert {
				t.Errorf("insert %d: wrong op kind %v", i, op.Kind)
			}
		}
		if inserts[0].Title != "Song A by Artist" {
			t.Errorf("unexpected insert title %q", inserts[0].Title)
		}
	})

	t.Run("single swap costs one delete and one insert", func(t *testing.T) {
		// current a,b,c,d -> target a,c,b,d: only b moves.
		inserts, deletes := computeOperations(
			resolved(
				[2]string{"A", "a"},
				[2]string{"C", "c"},
				[2]string{"B", "b"},
				[2]string{"D", "d"},
			),
			items("a", "b", "c", "d"),
		)

		if len(deletes) != 1 {
			t.Fatalf("expected 1 delete, got %d", len(deletes))
		}
		if deletes[0].VideoID != "b" {
			t.Errorf("expected delete of b, got %s", deletes[0].VideoID)
		}
		if deletes[0].ItemID != "item-b" {
			t.Errorf("delete must address item ID, got %q", deletes[0].ItemID)
		}

		if len(inserts) != 1 {
			t.Fatalf("expected 1 insert, got %d", len(inserts))
		}
		if inserts[0].VideoID != "b" || inserts[0].Position != 2 {
			t.Errorf("expected insert of b at 2, got %s at %d", inserts[0].VideoID, inserts[0].Position)
		}
	})

	t.Run("removed track is deleted without reinsert", func(t *testing.T) {
		inserts, deletes := computeOperations(
			resolved([2]string{"A", "a"}),
			items("a", "x"),
		)
		if len(inserts) != 0 {
			t.Errorf("expected no inserts, got %d", len(inserts))
		}
		if len(deletes) != 1 || deletes[0].VideoID != "x" {
			t.Fatalf("expected single delete of x, got %v", deletes)
		}
	})

	t.Run("inserts come out sorted ascending by position", func(t *testing.T) {
		inserts, _ := computeOperations(
			resolved(
				[2]string{"N1", "n1"},
				[2]string{"A", "a"},
				[2]string{"N2", "n2"},
				[2]string{"B", "b"},
				[2]string{"N3", "n3"},
			),
			items("a", "b"),
		)

		if len(inserts) != 3 {
			t.Fatalf("expected 3 inserts, got %d", len(inserts))
		}
		for i := 1; i < len(inserts); i++ {
			if inserts[i].Position < inserts[i-1].Position {
				t.Fatalf("inserts not sorted ascending: %v", inserts)
			}
		}
	})
}
