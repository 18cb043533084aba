package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profilegram/pkg/models"
)

func TestUsernameMatcher(t *testing.T) {
	records := []models.RemoteRecord{
		{"shortCode": "abc", "ownerUsername": "example"}, // post, skipped even though username matches
		{"username": "someoneelse"},
		{"username": "Example", "followersCount": float64(5)},
	}

	rec, ok := UsernameMatcher(records, "example")

	require.True(t, ok, "matching is case-insensitive")
	assert.Equal(t, 5, rec.Int("followersCount"))
}

func TestUsernameMatcherNoMatch(t *testing.T) {
	records := []models.RemoteRecord{
		{"username": "other"},
		{"shortCode": "abc"},
	}

	_, ok := UsernameMatcher(records, "example")
	assert.False(t, ok)
}

func TestUsernameMatcherEmptyInput(t *testing.T) {
	_, ok := UsernameMatcher(nil, "example")
	assert.False(t, ok)
}

func TestFirstRecordMatcher(t *testing.T) {
	records := []models.RemoteRecord{
		{"shortCode": "abc"},
		{"username": "whoever", "followersCount": float64(3)},
	}

	rec, ok := FirstRecordMatcher(records, "ignored")

	require.True(t, ok)
	assert.Equal(t, "whoever", rec.String("username"))
}

func TestFirstRecordMatcherAllPosts(t *testing.T) {
	records := []models.RemoteRecord{
		{"shortCode": "abc"},
		{"type": "Video"},
	}

	_, ok := FirstRecordMatcher(records, "ignored")
	assert.False(t, ok)
}

func TestByName(t *testing.T) {
	records := []models.RemoteRecord{{"username": "other"}}

	_, ok := ByName("username")(records, "example")
	assert.False(t, ok, "default matcher requires a username match")

	_, ok = ByName("first_record")(records, "example")
	assert.True(t, ok)

	_, ok = ByName("unknown-strategy")(records, "example")
	assert.False(t, ok, "unknown names fall back to the username matcher")
}

func TestIsPostRecord(t *testing.T) {
	tests := []struct {
		name string
		rec  models.RemoteRecord
		want bool
	}{
		{"short code camel", models.RemoteRecord{"shortCode": "abc"}, true},
		{"short code lower", models.RemoteRecord{"shortcode": "abc"}, true},
		{"image type", models.RemoteRecord{"type": "Image"}, true},
		{"video type", models.RemoteRecord{"type": "Video"}, true},
		{"sidecar type", models.RemoteRecord{"type": "Sidecar"}, true},
		{"profile record", models.RemoteRecord{"username": "x", "followersCount": float64(1)}, false},
		{"unknown type", models.RemoteRecord{"type": "user"}, false},
		{"empty", models.RemoteRecord{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPostRecord(tt.rec))
		})
	}
}
