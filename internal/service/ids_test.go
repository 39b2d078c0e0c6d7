package service

import (
	"testing"
)

// TestDeterministicIDs verifies that the same composite key always produces the same UUID
func TestDeterministicIDs(t *testing.T) {
	testCases := []struct {
		name     string
		userID   string
		otherID  string
		taskCode string
	}{
		{
			name:     "basic key",
			userID:   "user-1",
			otherID:  "item-1",
			taskCode: "T1",
		},
		{
			name:     "different task code",
			userID:   "user-1",
			otherID:  "item-1",
			taskCode: "T2",
		},
		{
			name:     "different user",
			userID:   "user-2",
			otherID:  "item-1",
			taskCode: "T1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id1 := itemRecordID(tc.userID, tc.otherID, tc.taskCode)
			id2 := itemRecordID(tc.userID, tc.otherID, tc.taskCode)

			if id1 != id2 {
				t.Errorf("ID mismatch: first=%s, second=%s", id1, id2)
			}
			if len(id1) != 36 {
				t.Errorf("Invalid UUID length: got %d, want 36", len(id1))
			}
		})
	}
}

// TestDeterministicIDsUniqueness verifies that different keys and entity kinds produce different UUIDs
func TestDeterministicIDsUniqueness(t *testing.T) {
	record := itemRecordID("user-1", "x", "T1")
	checklist := checklistSummaryID("user-1", "x", "T1")
	category := categorySummaryID("user-1", "x", "T1")

	if record == checklist {
		t.Errorf("Record and checklist summary ids should differ: %s == %s", record, checklist)
	}
	if checklist == category {
		t.Errorf("Checklist and category summary ids should differ: %s == %s", checklist, category)
	}

	other := itemRecordID("user-1", "y", "T1")
	if record == other {
		t.Errorf("Different items should produce different ids: %s == %s", record, other)
	}

	otherTask := itemRecordID("user-1", "x", "T2")
	if record == otherTask {
		t.Errorf("Different task codes should produce different ids: %s == %s", record, otherTask)
	}
}

// TestDeterministicIDsSeparatorSafety verifies that components containing
// separator characters cannot shift bytes between fields and collide
func TestDeterministicIDsSeparatorSafety(t *testing.T) {
	testCases := []struct {
		name string
		a    string
		b    string
	}{
		{
			name: "slash moves between item id and task code",
			a:    itemRecordID("u1", "i1", "A/B"),
			b:    itemRecordID("u1", "i1/A", "B"),
		},
		{
			name: "slash moves between user id and item id",
			a:    itemRecordID("u1/x", "cl", "T"),
			b:    itemRecordID("u1", "x/cl", "T"),
		},
		{
			name: "empty component is not absorbed",
			a:    itemRecordID("u1", "", "T"),
			b:    itemRecordID("u1", "T", ""),
		},
		{
			name: "summary keys with embedded slashes",
			a:    checklistSummaryID("u1/x", "cl", "T"),
			b:    checklistSummaryID("u1", "x/cl", "T"),
		},
		{
			name: "category keys with embedded slashes",
			a:    categorySummaryID("u1", "cat", "A/B"),
			b:    categorySummaryID("u1", "cat/A", "B"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.a == tc.b {
				t.Errorf("Distinct tuples collided on the same id: %s", tc.a)
			}
		})
	}
}
