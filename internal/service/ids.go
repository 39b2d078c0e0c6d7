package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// idNamespace is the fixed UUID namespace for deterministic record ids.
// Changing it would orphan every persisted record, summary, and category
// summary, so it must stay stable across releases.
var idNamespace = uuid.MustParse("7b9a42cf-30d1-4a5e-9c27-5f6e8d1b3a90")

// deterministicID hashes a kind tag plus length-prefixed key components.
// Components are caller-supplied strings with no alphabet restriction, so a
// plain separator join would be ambiguous ("a/b"+"c" vs "a"+"b/c"); the
// length prefix keeps every distinct tuple on a distinct digest input.
func deterministicID(kind string, parts ...string) string {
	var b strings.Builder
	b.WriteString(kind)
	for _, p := range parts {
		fmt.Fprintf(&b, "/%d:%s", len(p), p)
	}
	return uuid.NewSHA1(idNamespace, []byte(b.String())).String()
}

// itemRecordID derives the deterministic primary key for an item record.
// The same (user, item, task code) triple always maps to the same id, which
// is what makes resubmission an overwrite instead of a duplicate insert.
func itemRecordID(userID, itemID, taskCode string) string {
	return deterministicID("record", userID, itemID, taskCode)
}

// checklistSummaryID derives the deterministic primary key for a checklist
// summary keyed by (user, checklist, task code).
func checklistSummaryID(userID, checklistID, taskCode string) string {
	return deterministicID("checklist", userID, checklistID, taskCode)
}

// categorySummaryID derives the deterministic primary key for a category
// summary keyed by (user, category, task code).
func categorySummaryID(userID, categoryID, taskCode string) string {
	return deterministicID("category", userID, categoryID, taskCode)
}
