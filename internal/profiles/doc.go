// Package profiles persists named Git identity profiles in a single JSON file.
//
// Names are matched case-insensitively and every mutation rewrites the whole
// file under an advisory lock so concurrent git-id processes serialize their
// read-modify-write cycles.
package profiles
