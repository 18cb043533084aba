package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profilegram/pkg/apify"
	"profilegram/pkg/config"
	"profilegram/pkg/models"
	"profilegram/pkg/scraper"
	"profilegram/pkg/storage"
)

// fakeApify serves the three provider endpoints the pipeline touches.
func fakeApify(t *testing.T, datasetItems string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/acts/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"data":{"id":"run1","status":"READY","defaultDatasetId":"ds1"}}`)
	})
	mux.HandleFunc("/actor-runs/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"id":"run1","status":"SUCCEEDED","defaultDatasetId":"ds1"}}`)
	})
	mux.HandleFunc("/datasets/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, datasetItems)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// newPipeline wires a real client, orchestrator and file store against the
// fake provider, the way the serve command assembles them.
func newPipeline(t *testing.T, provider *httptest.Server) (*Server, *storage.FileStore) {
	t.Helper()

	apifyCfg := &config.ApifyConfig{
		Token:           "test-token",
		BaseURL:         provider.URL,
		ActorID:         "acme~profile-scraper",
		ResultsLimit:    30,
		PollInterval:    time.Millisecond,
		MaxPollAttempts: 5,
		FetchRetries:    3,
		FetchRetryDelay: time.Millisecond,
	}

	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	svc := scraper.New(apify.NewClient(apifyCfg, nil), store, nil, apifyCfg, nil)
	return New(testServerConfig(), svc, store, nil), store
}

func TestEndToEndScrapeThenRead(t *testing.T) {
	provider := fakeApify(t, `[
		{"username":"natgeo","fullName":"National Geographic","followersCount":280000000,"followsCount":130,"postsCount":2,"profilePicUrl":"https://igcdn.example.com/natgeo.jpg"},
		{"id":"p1","shortCode":"AAA","type":"Image","caption":"lions","displayUrl":"https://igcdn.example.com/AAA.jpg","likesCount":1000},
		{"id":"p2","shortCode":"BBB","type":"Image","caption":"tigers","displayUrl":"https://igcdn.example.com/BBB.jpg","likesCount":2000}
	]`)
	srv, store := newPipeline(t, provider)

	// Trigger the scrape over HTTP
	rec := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"username":"natgeo"}`)
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/scrape", body))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap models.ProfileSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, models.StatusSuccess, snap.Status)
	assert.Equal(t, "natgeo", snap.User.Username)
	assert.Equal(t, "National Geographic", snap.User.FullName)
	require.Len(t, snap.Posts, 2)
	assert.Equal(t, "AAA", snap.Posts[0].ShortCode)
	assert.Equal(t, "BBB", snap.Posts[1].ShortCode)

	// The read endpoint now serves the cached snapshot without scraping
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/profiles/natgeo", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var cached models.ProfileSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cached))
	assert.Equal(t, snap.User, cached.User)
	assert.Equal(t, snap.Posts, cached.Posts)

	// And the file store holds it too
	fromStore, err := store.Get(context.Background(), "natgeo")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, fromStore.Status)
}

func TestEndToEndEmptyDataset(t *testing.T) {
	provider := fakeApify(t, `[]`)
	srv, _ := newPipeline(t, provider)

	rec := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"username":"privateacct"}`)
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/scrape", body))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap models.ProfileSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, models.StatusEmptyOrPrivate, snap.Status)
	assert.Equal(t, "privateacct", snap.User.Username)
	assert.Zero(t, snap.User.FollowersCount)
	require.NotNil(t, snap.Posts)
	assert.Empty(t, snap.Posts)
}

func TestEndToEndReadScrapesOnMiss(t *testing.T) {
	provider := fakeApify(t, `[
		{"username":"newuser","fullName":"Brand New","followersCount":10}
	]`)
	srv, _ := newPipeline(t, provider)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/profiles/newuser", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap models.ProfileSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, models.StatusSuccess, snap.Status)
	assert.Equal(t, "Brand New", snap.User.FullName)
}
