// Package normalize turns heterogeneous remote job records into the fixed
// profile and post schema. Every function here is pure and total: missing
// source fields become documented defaults (empty string, 0, false), never
// errors. Field name aliases cover the shapes observed across actor
// configurations.
package normalize

import (
	"time"

	"profilegram/pkg/models"
)

// Profile normalizes a profile-shaped record. The username argument is the
// requested handle and wins over whatever the record carries, so a snapshot
// is always keyed by the name the caller asked for.
func Profile(rec models.RemoteRecord, username string) models.Profile {
	p := models.Profile{
		Username:       username,
		FullName:       rec.String("fullName", "full_name"),
		Biography:      rec.String("biography", "bio"),
		FollowersCount: rec.Int("followersCount", "followers"),
		FollowingCount: rec.Int("followsCount", "followingCount", "following"),
		PostsCount:     rec.Int("postsCount", "mediaCount"),
		ProfilePicURL:  rec.String("profilePicUrlHD", "profilePicUrl", "profile_pic_url"),
		ExternalURL:    rec.String("externalUrl", "external_url"),
		Private:        rec.Bool("private", "isPrivate", "is_private"),
		Verified:       rec.Bool("verified", "isVerified", "is_verified"),
	}
	if p.Username == "" {
		p.Username = rec.String("username")
	}
	return p
}

// Posts filters the post-shaped records and normalizes each, preserving
// source order. Profile records may embed their posts under latestPosts;
// the caller passes the full record sequence and gets one flat list back.
func Posts(records []models.RemoteRecord) []models.Post {
	posts := make([]models.Post, 0, len(records))
	for _, rec := range records {
		if IsPostRecord(rec) {
			posts = append(posts, Post(rec))
			continue
		}
		for _, nested := range rec.Records("latestPosts", "posts") {
			if IsPostRecord(nested) {
				posts = append(posts, Post(nested))
			}
		}
	}
	return posts
}

// Post normalizes a single post-shaped record.
func Post(rec models.RemoteRecord) models.Post {
	p := models.Post{
		ID:            rec.String("id"),
		ShortCode:     rec.String("shortCode", "shortcode"),
		Type:          rec.String("type"),
		Caption:       rec.String("caption"),
		URL:           rec.String("url"),
		CommentsCount: rec.Int("commentsCount", "comments"),
		LikesCount:    rec.Int("likesCount", "likes"),
		Timestamp:     parseTimestamp(rec.String("timestamp", "takenAt")),
		Images:        images(rec),
		Videos:        videos(rec),
		Mentions:      orEmpty(rec.StringSlice("mentions")),
		Hashtags:      orEmpty(rec.StringSlice("hashtags")),
	}
	if p.ID == "" {
		p.ID = p.ShortCode
	}
	return p
}

// images collects the post's images in source order. Single-image posts
// carry a displayUrl with dimensions; sidecar posts carry an images list of
// plain URLs with unknown dimensions.
func images(rec models.RemoteRecord) []models.Image {
	var out []models.Image

	if display := rec.String("displayUrl", "display_url"); display != "" {
		out = append(out, models.Image{
			URL:    display,
			Width:  rec.Int("dimensionsWidth"),
			Height: rec.Int("dimensionsHeight"),
		})
	}

	for _, url := range rec.StringSlice("images") {
		if url != "" && (len(out) == 0 || url != out[0].URL) {
			out = append(out, models.Image{URL: url})
		}
	}

	if out == nil {
		out = []models.Image{}
	}
	return out
}

func videos(rec models.RemoteRecord) []string {
	var out []string
	if v := rec.String("videoUrl", "video_url"); v != "" {
		out = append(out, v)
	}
	for _, child := range rec.Records("childPosts") {
		if v := child.String("videoUrl", "video_url"); v != "" {
			out = append(out, v)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// parseTimestamp accepts the ISO-8601 variants the provider emits and
// returns the zero time for anything unparseable.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
