package entities

import (
	"fmt"
	"sort"
	"strings"
)

// VersionKey is the one field every VersionRecord must carry.
const VersionKey = "version"

// VersionRecord is the version metadata a checker reports for a dependency.
// It always contains a "version" entry; checkers may track any additional
// string fields (e.g. a binary-compatibility identifier) and the whole record
// is persisted verbatim so later runs can compare those fields too.
type VersionRecord map[string]string

// Version returns the record's version string ("" when absent).
func (r VersionRecord) Version() string {
	return r[VersionKey]
}

// Clone returns an independent copy of the record.
func (r VersionRecord) Clone() VersionRecord {
	clone := make(VersionRecord, len(r))
	for k, v := range r {
		clone[k] = v
	}
	return clone
}

// ExtraFieldChanges returns the names of all non-version fields whose value
// differs between old and r, in sorted order. Fields present on only one
// side count as changed.
func (r VersionRecord) ExtraFieldChanges(old VersionRecord) []string {
	seen := make(map[string]bool, len(r)+len(old))
	var changed []string
	for key, newVal := range r {
		seen[key] = true
		if key == VersionKey {
			continue
		}
		if old[key] != newVal {
			changed = append(changed, key)
		}
	}
	for key := range old {
		if key == VersionKey || seen[key] {
			continue
		}
		changed = append(changed, key)
	}
	sort.Strings(changed)
	return changed
}

// FieldChangeWarnings formats a warning paragraph for every tracked
// non-version field that changed between old and new. Checkers append the
// result to their changelog text so compatibility-relevant changes (such as
// a soname bump) are surfaced in the notification.
func FieldChangeWarnings(old, newRecord VersionRecord) string {
	changed := newRecord.ExtraFieldChanges(old)
	if len(changed) == 0 {
		return ""
	}

	var b strings.Builder
	for _, field := range changed {
		b.WriteString(fmt.Sprintf(
			"\n\n**NOTE: This release introduces a `%s` change from %q to %q.**",
			field, old[field], newRecord[field],
		))
	}
	return b.String()
}

// NormalizeVersion canonicalizes a version string before comparison.
// Comparison is exact string equality, never semantic ordering, so the only
// normalization applied is whitespace trimming; checkers are expected to
// keep their formatting stable across runs.
func NormalizeVersion(version string) string {
	return strings.TrimSpace(version)
}
