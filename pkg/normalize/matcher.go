package normalize

import (
	"strings"

	"profilegram/pkg/models"
)

// Matcher locates the profile-shaped record among the heterogeneous records
// a run returns. The heuristic is deliberately pluggable: upstream actors
// have changed their output shape before and the orchestrator should not
// care which strategy is in use.
type Matcher func(records []models.RemoteRecord, username string) (models.RemoteRecord, bool)

// UsernameMatcher is the default strategy: the first record whose username
// field, case-insensitively, equals the requested username.
func UsernameMatcher(records []models.RemoteRecord, username string) (models.RemoteRecord, bool) {
	for _, rec := range records {
		if strings.EqualFold(rec.String("username", "ownerUsername"), username) && !IsPostRecord(rec) {
			return rec, true
		}
	}
	return nil, false
}

// FirstRecordMatcher is the fallback strategy used by some actor
// configurations that return exactly one profile record: the first record
// that does not look like a post.
func FirstRecordMatcher(records []models.RemoteRecord, _ string) (models.RemoteRecord, bool) {
	for _, rec := range records {
		if !IsPostRecord(rec) {
			return rec, true
		}
	}
	return nil, false
}

// ByName returns the matcher registered under the given name, defaulting to
// UsernameMatcher for unknown names.
func ByName(name string) Matcher {
	switch name {
	case "first_record":
		return FirstRecordMatcher
	default:
		return UsernameMatcher
	}
}

// IsPostRecord reports whether a record is post-shaped: it carries a
// short-code-like field or one of the known post type discriminators.
func IsPostRecord(rec models.RemoteRecord) bool {
	if rec.Has("shortCode", "shortcode") {
		return true
	}
	switch rec.String("type") {
	case "Image", "Video", "Sidecar":
		return true
	}
	return false
}
