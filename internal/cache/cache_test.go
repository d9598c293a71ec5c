package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomBombadyl/nvidia-blog-agent/internal/domain"
)

func TestNormalizeQuestion_LowercasesTrimsAndCollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "what is go", NormalizeQuestion("  What   IS\tGo \n"))
}

func TestKey_DiffersByK(t *testing.T) {
	assert.NotEqual(t, Key("question", 4), Key("question", 8))
}

func TestCache_HitAvoidsRecompute(t *testing.T) {
	var calls int32
	compute := func(ctx context.Context, question string, k int) (string, []domain.RetrievedDoc, error) {
		atomic.AddInt32(&calls, 1)
		return "answer", nil, nil
	}
	c := New(compute, DefaultConfig())

	a1, _, err := c.Answer(context.Background(), "What is Go?", 8, "")
	require.NoError(t, err)
	a2, _, err := c.Answer(context.Background(), "what is go?   ", 8, "")
	require.NoError(t, err)

	assert.Equal(t, "answer", a1)
	assert.Equal(t, a1, a2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCache_DifferentKIsDifferentEntry(t *testing.T) {
	var calls int32
	compute := func(ctx context.Context, question string, k int) (string, []domain.RetrievedDoc, error) {
		atomic.AddInt32(&calls, 1)
		return "answer", nil, nil
	}
	c := New(compute, DefaultConfig())

	_, _, _ = c.Answer(context.Background(), "question", 4, "")
	_, _, _ = c.Answer(context.Background(), "question", 8, "")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCache_FailureIsNotCached(t *testing.T) {
	var calls int32
	compute := func(ctx context.Context, question string, k int) (string, []domain.RetrievedDoc, error) {
		atomic.AddInt32(&calls, 1)
		return "", nil, errors.New("boom")
	}
	c := New(compute, DefaultConfig())

	_, _, err1 := c.Answer(context.Background(), "question", 8, "")
	_, _, err2 := c.Answer(context.Background(), "question", 8, "")
	assert.Error(t, err1)
	assert.Error(t, err2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCache_ConcurrentIdenticalRequestsShareOneComputation(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	compute := func(ctx context.Context, question string, k int) (string, []domain.RetrievedDoc, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "answer", nil, nil
	}
	c := New(compute, DefaultConfig())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = c.Answer(context.Background(), "question", 8, "")
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCache_SessionLogRecordsAcrossHitsAndMisses(t *testing.T) {
	compute := func(ctx context.Context, question string, k int) (string, []domain.RetrievedDoc, error) {
		return "answer", []domain.RetrievedDoc{{Title: "A"}}, nil
	}
	c := New(compute, DefaultConfig())

	_, _, err := c.Answer(context.Background(), "question", 8, "session-1")
	require.NoError(t, err)
	_, _, err = c.Answer(context.Background(), "question", 8, "session-1")
	require.NoError(t, err)

	log := c.SessionLog("session-1")
	require.Len(t, log, 2)
	assert.Equal(t, 1, log[0].DocCount)
	assert.Equal(t, len("answer"), log[0].AnswerLength)
}

func TestCache_EmptySessionIDIsNotRecorded(t *testing.T) {
	compute := func(ctx context.Context, question string, k int) (string, []domain.RetrievedDoc, error) {
		return "answer", nil, nil
	}
	c := New(compute, DefaultConfig())

	_, _, _ = c.Answer(context.Background(), "question", 8, "")
	assert.Nil(t, c.SessionLog(""))
}

func TestSessionStore_BoundsLogToMaxEntries(t *testing.T) {
	s := NewSessionStore(2, time.Hour)
	now := time.Now()
	s.Record("sess", now, "q1", "a1", 1)
	s.Record("sess", now, "q2", "a2", 1)
	s.Record("sess", now, "q3", "a3", 1)

	log := s.Log("sess", now)
	require.Len(t, log, 2)
	assert.Equal(t, "q2", log[0].Question)
	assert.Equal(t, "q3", log[1].Question)
}

func TestSessionStore_IdleSessionExpires(t *testing.T) {
	s := NewSessionStore(10, time.Minute)
	start := time.Now()
	s.Record("sess", start, "q1", "a1", 1)

	later := start.Add(2 * time.Minute)
	assert.Nil(t, s.Log("sess", later))
}

func TestSessionStore_TouchingResetsIdleTimer(t *testing.T) {
	s := NewSessionStore(10, time.Minute)
	start := time.Now()
	s.Record("sess", start, "q1", "a1", 1)

	midway := start.Add(30 * time.Second)
	s.Record("sess", midway, "q2", "a2", 1)

	later := midway.Add(45 * time.Second)
	log := s.Log("sess", later)
	require.Len(t, log, 2)
}
