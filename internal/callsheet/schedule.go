package callsheet

import (
	"sort"

	"github.com/sells-group/coldcall-cli/internal/model"
	"github.com/sells-group/coldcall-cli/internal/timezone"
)

// slot points a timezone at a block, with priority 0 = prime.
type slot struct {
	index    int
	priority int
}

// zoneSlots maps each zone to its candidate blocks in priority order.
// Placement only ever uses the first slot; the later pairs are reserved for
// secondary/afternoon scheduling.
var zoneSlots = map[timezone.Zone][]slot{
	timezone.Eastern:  {{0, 0}, {1, 0}, {6, 1}, {7, 1}},
	timezone.Central:  {{1, 0}, {2, 0}, {7, 1}, {8, 1}},
	timezone.Mountain: {{2, 0}, {3, 0}, {8, 1}, {9, 1}},
	timezone.Pacific:  {{3, 0}, {4, 0}, {9, 1}, {10, 1}},
	timezone.Hawaii:   {{4, 0}},
	timezone.Alaska:   {{3, 0}, {4, 0}},
}

// Entry is a prepared contact ready for scheduling.
type Entry struct {
	Contact       model.Contact
	Zone          timezone.Zone
	TZLabel       string
	ScriptContent string
	NoteHTML      string
}

// Schedule assigns each entry to the first (prime) block mapped for its
// resolved timezone. Entries whose zone is Unknown or unmapped land in the
// unplaced bucket, so a contact is never silently dropped. Every block and the
// unplaced bucket are then sorted ascending by title seniority; the sort is
// stable, so equally-ranked contacts keep their input order and repeated
// runs over the same input produce identical sheets.
func Schedule(entries []Entry) (map[int][]Entry, []Entry) {
	blocks := make(map[int][]Entry, NumBlocks)
	for i := 0; i < NumBlocks; i++ {
		blocks[i] = nil
	}
	var unplaced []Entry

	for _, e := range entries {
		slots, ok := zoneSlots[e.Zone]
		if e.Zone == timezone.Unknown || !ok || len(slots) == 0 {
			unplaced = append(unplaced, e)
			continue
		}
		first := slots[0].index
		blocks[first] = append(blocks[first], e)
	}

	for i := range blocks {
		sortBySeniority(blocks[i])
	}
	sortBySeniority(unplaced)

	return blocks, unplaced
}

func sortBySeniority(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return Seniority(entries[i].Contact.JobTitle) < Seniority(entries[j].Contact.JobTitle)
	})
}
