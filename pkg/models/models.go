package models

import "time"

// Status describes the outcome of one scrape attempt. It is part of the
// persisted snapshot so that degraded results are cached alongside good ones.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusEmptyOrPrivate Status = "empty_or_private"
	StatusPartialData    Status = "partial_data"
	StatusError          Status = "error"
	StatusNotFound       Status = "not_found"
)

// Profile is the normalized profile entity. Every field is always populated:
// missing source data becomes an empty string, zero, or false, never an
// omitted field.
type Profile struct {
	Username       string `json:"username" bson:"username"`
	FullName       string `json:"fullName" bson:"full_name"`
	Biography      string `json:"biography" bson:"biography"`
	FollowersCount int    `json:"followersCount" bson:"followers_count"`
	FollowingCount int    `json:"followingCount" bson:"following_count"`
	PostsCount     int    `json:"postsCount" bson:"posts_count"`
	ProfilePicURL  string `json:"profilePicUrl" bson:"profile_pic_url"`
	ExternalURL    string `json:"externalUrl" bson:"external_url"`
	Private        bool   `json:"private" bson:"private"`
	Verified       bool   `json:"verified" bson:"verified"`
}

// EmptyProfile returns a profile carrying only the requested username and
// zero defaults for everything else.
func EmptyProfile(username string) Profile {
	return Profile{Username: username}
}

// Image is a single post image with its dimensions, 0 when unknown.
type Image struct {
	URL    string `json:"url" bson:"url"`
	Width  int    `json:"width" bson:"width"`
	Height int    `json:"height" bson:"height"`
}

// Post is a normalized post belonging to a profile.
type Post struct {
	ID            string    `json:"id" bson:"id"`
	ShortCode     string    `json:"shortCode" bson:"short_code"`
	Type          string    `json:"type" bson:"type"`
	Caption       string    `json:"caption" bson:"caption"`
	URL           string    `json:"url" bson:"url"`
	CommentsCount int       `json:"commentsCount" bson:"comments_count"`
	LikesCount    int       `json:"likesCount" bson:"likes_count"`
	Timestamp     time.Time `json:"timestamp" bson:"timestamp"`
	Images        []Image   `json:"images" bson:"images"`
	Videos        []string  `json:"videos" bson:"videos"`
	Mentions      []string  `json:"mentions" bson:"mentions"`
	Hashtags      []string  `json:"hashtags" bson:"hashtags"`
}

// ProfileSnapshot is the unit of persistence and the unit returned to
// callers: one profile, its posts, and the outcome of the scrape attempt
// that produced them. Snapshots are keyed by username and overwritten on
// every attempt, last write wins.
type ProfileSnapshot struct {
	User      Profile   `json:"user" bson:"user"`
	Posts     []Post    `json:"posts" bson:"posts"`
	ScrapedAt time.Time `json:"scrapedAt" bson:"scraped_at"`
	Status    Status    `json:"status" bson:"status"`
	Error     string    `json:"error,omitempty" bson:"error,omitempty"`
}

// NewSnapshot constructs a snapshot with the posts slice always non-nil so
// callers and stores never see a null posts list.
func NewSnapshot(user Profile, posts []Post, status Status) *ProfileSnapshot {
	if posts == nil {
		posts = []Post{}
	}
	return &ProfileSnapshot{
		User:      user,
		Posts:     posts,
		ScrapedAt: time.Now().UTC(),
		Status:    status,
	}
}

// ErrorSnapshot builds the snapshot returned when a scrape attempt fails
// outright. It still carries a fully populated synthetic profile.
func ErrorSnapshot(username string, errMsg string) *ProfileSnapshot {
	s := NewSnapshot(EmptyProfile(username), nil, StatusError)
	s.Error = errMsg
	return s
}

// NotFoundSnapshot is the 404-shaped body served when no snapshot can be
// produced for a username.
func NotFoundSnapshot(username string) *ProfileSnapshot {
	return NewSnapshot(EmptyProfile(username), nil, StatusNotFound)
}
