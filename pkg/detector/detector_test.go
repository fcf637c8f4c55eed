package detector

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "igfakecheck/pkg/errors"
	"igfakecheck/pkg/instagram"
	"igfakecheck/pkg/logger"
)

type fakeSource struct {
	mediaID    string
	resolveErr error
	likers     []instagram.UserShort
	likersErr  error
	users      map[string]*instagram.User
	userErrs   map[string]error
	panicOn    string

	mu      sync.Mutex
	fetched []string
}

func (s *fakeSource) MediaIDFromURL(_ context.Context, ref string) (string, error) {
	if s.resolveErr != nil {
		return "", s.resolveErr
	}
	return s.mediaID, nil
}

func (s *fakeSource) MediaLikers(_ context.Context, mediaID string) ([]instagram.UserShort, error) {
	if s.likersErr != nil {
		return nil, s.likersErr
	}
	return s.likers, nil
}

func (s *fakeSource) UserInfo(_ context.Context, userID string) (*instagram.User, error) {
	s.mu.Lock()
	s.fetched = append(s.fetched, userID)
	s.mu.Unlock()

	if userID == s.panicOn {
		panic("unexpected payload")
	}
	if err := s.userErrs[userID]; err != nil {
		return nil, err
	}
	u, ok := s.users[userID]
	if !ok {
		return nil, errs.New(errs.ErrorTypeNotFound, "user %s not found", userID)
	}
	return u, nil
}

func newFakeSource(n int) *fakeSource {
	s := &fakeSource{
		mediaID:  "2278584739065882267",
		users:    make(map[string]*instagram.User),
		userErrs: make(map[string]error),
	}
	for i := 1; i <= n; i++ {
		pk := fmt.Sprintf("%d", 1000+i)
		name := fmt.Sprintf("liker_%d", i)
		s.likers = append(s.likers, instagram.UserShort{PK: instagram.ID(pk), Username: name})
		s.users[pk] = &instagram.User{
			PK:             instagram.ID(pk),
			Username:       name,
			MediaCount:     ip(25),
			FollowerCount:  ip(300),
			FollowingCount: ip(250),
			Biography:      sp("Runner, reader and coffee snob"),
		}
	}
	return s
}

type recordingObserver struct {
	stages  []string
	total   int
	indexes []int
	run     *Run
}

func (o *recordingObserver) OnStage(stage string)     { o.stages = append(o.stages, stage) }
func (o *recordingObserver) OnStart(total int)        { o.total = total }
func (o *recordingObserver) OnResult(i int, _ Result) { o.indexes = append(o.indexes, i) }
func (o *recordingObserver) OnFinish(run *Run)        { o.run = run }

func usernames(results []Result) []string {
	var names []string
	for _, r := range results {
		names = append(names, r.Username)
	}
	return names
}

func TestRunAnalyzesFirstNLikersInOrder(t *testing.T) {
	source := newFakeSource(8)
	source.users["1002"] = &instagram.User{
		PK: "1002", Username: "liker_2",
		MediaCount: ip(0), FollowerCount: ip(2), FollowingCount: ip(700), Biography: sp("dm for promo"),
	}

	obs := &recordingObserver{}
	d := New(source, logger.NewTestLogger(), WithObserver(obs))

	run, err := d.Run(context.Background(), "https://www.instagram.com/p/B-fKL9qpeab/", 5)
	require.NoError(t, err)

	assert.Equal(t, "2278584739065882267", run.MediaID)
	assert.Equal(t, 8, run.Likers)
	assert.Equal(t, 5, run.Requested)
	assert.Equal(t, []string{"liker_1", "liker_2", "liker_3", "liker_4", "liker_5"}, usernames(run.Results))
	assert.Equal(t, []string{"1001", "1002", "1003", "1004", "1005"}, source.fetched)
	assert.Equal(t, VerdictFake, run.Results[1].Verdict)
	assert.Equal(t, VerdictGenuine, run.Results[0].Verdict)
	assert.False(t, run.FinishedAt.Before(run.StartedAt))

	assert.Equal(t, []string{"Resolving post", "Getting likers"}, obs.stages)
	assert.Equal(t, 5, obs.total)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, obs.indexes)
	assert.Same(t, run, obs.run)
}

func TestRunShortLikerList(t *testing.T) {
	source := newFakeSource(3)
	d := New(source, logger.NewTestLogger())

	run, err := d.Run(context.Background(), "B-fKL9qpeab", 20)
	require.NoError(t, err)
	assert.Len(t, run.Results, 3)
	assert.Equal(t, 3, run.Likers)

	empty := newFakeSource(0)
	run, err = New(empty, logger.NewTestLogger()).Run(context.Background(), "B-fKL9qpeab", 5)
	require.NoError(t, err)
	assert.Empty(t, run.Results)
}

func TestRunIsolatesProfileFetchFailures(t *testing.T) {
	source := newFakeSource(4)
	source.userErrs["1003"] = &errs.Error{Type: errs.ErrorTypeRateLimit, Message: "Please wait a few minutes", Code: 429}

	log := logger.NewTestLogger()
	run, err := New(source, log).Run(context.Background(), "B-fKL9qpeab", 4)
	require.NoError(t, err)

	require.Len(t, run.Results, 4)
	assert.Equal(t, []string{"liker_1", "liker_2", "liker_3", "liker_4"}, usernames(run.Results))

	errorRows := 0
	for i, r := range run.Results {
		if r.IsError() {
			errorRows++
			assert.Equal(t, 2, i)
			assert.Contains(t, r.Error, "Please wait a few minutes")
			continue
		}
		assert.Equal(t, VerdictGenuine, r.Verdict)
	}
	assert.Equal(t, 1, errorRows)
	assert.True(t, log.HasMessage("Profile could not be analyzed"))
}

func TestRunLikerWithoutID(t *testing.T) {
	source := newFakeSource(2)
	source.likers[0].PK = ""

	run, err := New(source, logger.NewTestLogger()).Run(context.Background(), "B-fKL9qpeab", 2)
	require.NoError(t, err)

	assert.Equal(t, VerdictError, run.Results[0].Verdict)
	assert.Equal(t, "liker_1", run.Results[0].Username)
	assert.Equal(t, []string{"1002"}, source.fetched)
}

func TestRunFallsBackToLikerUsername(t *testing.T) {
	source := newFakeSource(1)
	source.users["1001"].Username = ""

	run, err := New(source, logger.NewTestLogger()).Run(context.Background(), "B-fKL9qpeab", 1)
	require.NoError(t, err)
	assert.Equal(t, "liker_1", run.Results[0].Username)
	assert.Equal(t, VerdictGenuine, run.Results[0].Verdict)
}

func TestRunValidatesCount(t *testing.T) {
	source := newFakeSource(3)
	d := New(source, logger.NewTestLogger())

	for _, count := range []int{0, -1, 21} {
		_, err := d.Run(context.Background(), "B-fKL9qpeab", count)
		assert.True(t, errs.Is(err, errs.ErrorTypeInvalidInput), "count %d", count)
	}

	_, err := d.Run(context.Background(), "", 5)
	assert.True(t, errs.Is(err, errs.ErrorTypeInvalidInput))
	assert.Empty(t, source.fetched)
}

func TestRunAbortsOnResolutionFailure(t *testing.T) {
	source := newFakeSource(3)
	source.resolveErr = errs.New(errs.ErrorTypeInvalidInput, "no post shortcode")

	run, err := New(source, logger.NewTestLogger()).Run(context.Background(), "https://example.com", 3)
	assert.Nil(t, run)
	assert.Equal(t, errs.ErrorTypePostResolutionFailed, errs.TypeOf(err))
	assert.Empty(t, source.fetched)

	source = newFakeSource(3)
	source.likersErr = errs.New(errs.ErrorTypeNotFound, "media not found")
	_, err = New(source, logger.NewTestLogger()).Run(context.Background(), "B-fKL9qpeab", 3)
	assert.True(t, errs.Is(err, errs.ErrorTypePostResolutionFailed))
	assert.True(t, errs.Is(err, errs.ErrorTypeNotFound))
}

func TestRunRecoversFromPanics(t *testing.T) {
	source := newFakeSource(3)
	source.panicOn = "1002"

	log := logger.NewTestLogger()
	run, err := New(source, log).Run(context.Background(), "B-fKL9qpeab", 3)
	assert.Nil(t, run)
	assert.Equal(t, errs.ErrorTypeUnknown, errs.TypeOf(err))
	assert.Contains(t, err.Error(), "unexpected payload")
	assert.True(t, log.HasMessage("Analysis aborted unexpectedly"))
}

func TestRunStopsWhenCancelled(t *testing.T) {
	source := newFakeSource(3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := New(source, logger.NewTestLogger()).Run(ctx, "B-fKL9qpeab", 3)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, source.fetched)
	require.NotNil(t, run)
	assert.Empty(t, run.Results)
}

// cancelAfter cancels the run once it has seen n results
type cancelAfter struct {
	NopObserver
	n      int
	cancel context.CancelFunc
}

func (c *cancelAfter) OnResult(index int, _ Result) {
	if index+1 == c.n {
		c.cancel()
	}
}

func TestRunKeepsResultsWhenCancelledMidway(t *testing.T) {
	source := newFakeSource(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	det := New(source, logger.NewTestLogger(), WithObserver(&cancelAfter{n: 2, cancel: cancel}))
	run, err := det.Run(ctx, "B-fKL9qpeab", 4)

	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, run)
	require.Len(t, run.Results, 2)
	assert.Equal(t, "liker_1", run.Results[0].Username)
	assert.Equal(t, "liker_2", run.Results[1].Username)
	assert.Equal(t, 4, run.Likers)
	assert.False(t, run.FinishedAt.IsZero())
	assert.Equal(t, []string{"1001", "1002"}, source.fetched)
}

func TestRunPostURL(t *testing.T) {
	run := &Run{PostRef: "https://www.instagram.com/reel/B-fKL9qpeab/?igsh=x", MediaID: "2278584739065882267"}
	assert.Equal(t, "https://www.instagram.com/p/B-fKL9qpeab/", run.PostURL())

	unresolved := &Run{PostRef: "not a post"}
	assert.Equal(t, "not a post", unresolved.PostURL())

	bad := &Run{PostRef: "ref", MediaID: "12ab"}
	assert.Equal(t, "ref", bad.PostURL())
}
