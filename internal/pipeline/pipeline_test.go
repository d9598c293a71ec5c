package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomBombadyl/nvidia-blog-agent/internal/domain"
)

type fakeFetcher struct {
	mu       sync.Mutex
	fail     map[string]bool
	fetched  []string
	htmlByID map[string]string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, url)
	if f.fail[url] {
		return "", errors.New("fetch failed")
	}
	if html, ok := f.htmlByID[url]; ok {
		return html, nil
	}
	return "<p>body</p>", nil
}

type fakeSummarizer struct {
	fail map[string]bool
}

func (f *fakeSummarizer) Summarize(ctx context.Context, raw domain.RawContent) (domain.Summary, error) {
	if f.fail[raw.PostID] {
		return domain.Summary{}, errors.New("summarize failed")
	}
	return domain.NewSummary(
		raw.PostID, raw.Title, raw.URL, nil,
		"An executive summary that is long enough.",
		"A technical summary that is long enough to pass the fifty character floor easily.",
		nil, nil, "test",
	)
}

func (f *fakeSummarizer) Answer(ctx context.Context, question string, docs []domain.RetrievedDoc) (string, error) {
	return "", nil
}

type fakeBackend struct {
	mu       sync.Mutex
	fail     map[string]bool
	ingested []string
}

func (b *fakeBackend) Ingest(ctx context.Context, summary domain.Summary) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail[summary.PostID] {
		return errors.New("ingest failed")
	}
	b.ingested = append(b.ingested, summary.PostID)
	return nil
}

func (b *fakeBackend) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedDoc, error) {
	return nil, nil
}

func extractStub(post domain.Post, html string) domain.RawContent {
	return domain.RawContent{PostID: post.ID, URL: post.URL, Title: post.Title, HTML: html, Text: "body"}
}

const atomFeedFixture = `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry><title>Post One</title><link href="https://example.org/one"/></entry>
  <entry><title>Post Two</title><link href="https://example.org/two"/></entry>
  <entry><title>Post Three</title><link href="https://example.org/three"/></entry>
</feed>`

func TestRun_IngestsAllNewPostsAndCommitsState(t *testing.T) {
	fetcher := &fakeFetcher{fail: map[string]bool{}}
	summarizerFake := &fakeSummarizer{fail: map[string]bool{}}
	backendFake := &fakeBackend{fail: map[string]bool{}}

	deps := Deps{Fetcher: fetcher, Extract: extractStub, Summarizer: summarizerFake, Backend: backendFake}
	newState, result, err := Run(context.Background(), atomFeedFixture, "test-source", domain.NewState(), deps, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 3, result.DiscoveredCount)
	assert.Equal(t, 3, result.NewCount)
	assert.Equal(t, 3, result.SummarizedCount)
	assert.Equal(t, 3, result.IngestedCount)
	assert.Len(t, newState.LastSeenPostIDs, 3)
	assert.Len(t, newState.History, 1)
}

func TestRun_SkipsAlreadySeenPosts(t *testing.T) {
	fetcher := &fakeFetcher{fail: map[string]bool{}}
	summarizerFake := &fakeSummarizer{fail: map[string]bool{}}
	backendFake := &fakeBackend{fail: map[string]bool{}}
	deps := Deps{Fetcher: fetcher, Extract: extractStub, Summarizer: summarizerFake, Backend: backendFake}

	firstID := domain.PostID("https://example.org/one")
	state := domain.State{LastSeenPostIDs: []string{firstID}}

	_, result, err := Run(context.Background(), atomFeedFixture, "test-source", state, deps, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 3, result.DiscoveredCount)
	assert.Equal(t, 2, result.NewCount)
}

func TestRun_FetchFailureOmitsPostButContinues(t *testing.T) {
	failURL := "https://example.org/two"
	fetcher := &fakeFetcher{fail: map[string]bool{failURL: true}}
	summarizerFake := &fakeSummarizer{fail: map[string]bool{}}
	backendFake := &fakeBackend{fail: map[string]bool{}}
	deps := Deps{Fetcher: fetcher, Extract: extractStub, Summarizer: summarizerFake, Backend: backendFake}

	_, result, err := Run(context.Background(), atomFeedFixture, "test-source", domain.NewState(), deps, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 3, result.NewCount)
	assert.Equal(t, 2, result.SummarizedCount)
	assert.Equal(t, 2, result.IngestedCount)
}

func TestRun_SummarizeFailureOmitsPost(t *testing.T) {
	failID := domain.PostID("https://example.org/one")
	fetcher := &fakeFetcher{fail: map[string]bool{}}
	summarizerFake := &fakeSummarizer{fail: map[string]bool{failID: true}}
	backendFake := &fakeBackend{fail: map[string]bool{}}
	deps := Deps{Fetcher: fetcher, Extract: extractStub, Summarizer: summarizerFake, Backend: backendFake}

	_, result, err := Run(context.Background(), atomFeedFixture, "test-source", domain.NewState(), deps, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 2, result.SummarizedCount)
	assert.Equal(t, 2, result.IngestedCount)
}

func TestRun_IngestFailureOmitsPostFromCount(t *testing.T) {
	failID := domain.PostID("https://example.org/three")
	fetcher := &fakeFetcher{fail: map[string]bool{}}
	summarizerFake := &fakeSummarizer{fail: map[string]bool{}}
	backendFake := &fakeBackend{fail: map[string]bool{failID: true}}
	deps := Deps{Fetcher: fetcher, Extract: extractStub, Summarizer: summarizerFake, Backend: backendFake}

	_, result, err := Run(context.Background(), atomFeedFixture, "test-source", domain.NewState(), deps, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 3, result.SummarizedCount)
	assert.Equal(t, 2, result.IngestedCount)
	assert.NotContains(t, result.NewPostIDs, failID)
}

func TestRun_ZeroIngestedIsStillASuccessfulRun(t *testing.T) {
	fetcher := &fakeFetcher{fail: map[string]bool{
		"https://example.org/one":   true,
		"https://example.org/two":   true,
		"https://example.org/three": true,
	}}
	summarizerFake := &fakeSummarizer{fail: map[string]bool{}}
	backendFake := &fakeBackend{fail: map[string]bool{}}
	deps := Deps{Fetcher: fetcher, Extract: extractStub, Summarizer: summarizerFake, Backend: backendFake}

	newState, result, err := Run(context.Background(), atomFeedFixture, "test-source", domain.NewState(), deps, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 0, result.IngestedCount)
	assert.Len(t, newState.History, 1)
}

func TestRun_CancelledContextDoesNotCommit(t *testing.T) {
	fetcher := &fakeFetcher{fail: map[string]bool{}}
	summarizerFake := &fakeSummarizer{fail: map[string]bool{}}
	backendFake := &fakeBackend{fail: map[string]bool{}}
	deps := Deps{Fetcher: fetcher, Extract: extractStub, Summarizer: summarizerFake, Backend: backendFake}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state := domain.NewState()
	newState, _, err := Run(ctx, atomFeedFixture, "test-source", state, deps, DefaultConfig())
	assert.Error(t, err)
	assert.Equal(t, state, newState)
}

func TestRun_PreservesFeedOrderInNewPostIDs(t *testing.T) {
	fetcher := &fakeFetcher{fail: map[string]bool{}}
	summarizerFake := &fakeSummarizer{fail: map[string]bool{}}
	backendFake := &fakeBackend{fail: map[string]bool{}}
	deps := Deps{Fetcher: fetcher, Extract: extractStub, Summarizer: summarizerFake, Backend: backendFake}

	_, result, err := Run(context.Background(), atomFeedFixture, "test-source", domain.NewState(), deps, DefaultConfig())
	require.NoError(t, err)
	expected := []string{
		domain.PostID("https://example.org/one"),
		domain.PostID("https://example.org/two"),
		domain.PostID("https://example.org/three"),
	}
	assert.Equal(t, expected, result.NewPostIDs)
}

func TestRun_CompletesWithinContextDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	fetcher := &fakeFetcher{fail: map[string]bool{}}
	summarizerFake := &fakeSummarizer{fail: map[string]bool{}}
	backendFake := &fakeBackend{fail: map[string]bool{}}
	deps := Deps{Fetcher: fetcher, Extract: extractStub, Summarizer: summarizerFake, Backend: backendFake}

	_, _, err := Run(ctx, atomFeedFixture, "test-source", domain.NewState(), deps, DefaultConfig())
	assert.NoError(t, err)
}
