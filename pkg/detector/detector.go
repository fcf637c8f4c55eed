package detector

import (
	"context"
	"fmt"
	"time"

	"igfakecheck/pkg/config"
	errs "igfakecheck/pkg/errors"
	"igfakecheck/pkg/instagram"
	"igfakecheck/pkg/logger"
)

// MediaResolver turns a post reference into a media id
type MediaResolver interface {
	MediaIDFromURL(ctx context.Context, ref string) (string, error)
}

// LikerLister lists the accounts that liked a post
type LikerLister interface {
	MediaLikers(ctx context.Context, mediaID string) ([]instagram.UserShort, error)
}

// ProfileFetcher fetches a full profile
type ProfileFetcher interface {
	UserInfo(ctx context.Context, userID string) (*instagram.User, error)
}

// Source is everything the flow needs from Instagram
type Source interface {
	MediaResolver
	LikerLister
	ProfileFetcher
}

// Observer is notified as a run progresses. Calls are made from the
// goroutine running Detector.Run.
type Observer interface {
	OnStage(stage string)
	OnStart(total int)
	OnResult(index int, result Result)
	OnFinish(run *Run)
}

// NopObserver ignores every event
type NopObserver struct{}

func (NopObserver) OnStage(string)       {}
func (NopObserver) OnStart(int)          {}
func (NopObserver) OnResult(int, Result) {}
func (NopObserver) OnFinish(*Run)        {}

// Run is the outcome of analyzing the likers of one post
type Run struct {
	PostRef    string
	MediaID    string
	Likers     int
	Requested  int
	Results    []Result
	StartedAt  time.Time
	FinishedAt time.Time
}

// PostURL returns the canonical link of the analyzed post, or PostRef when
// the post was never resolved
func (r *Run) PostURL() string {
	if r.MediaID == "" {
		return r.PostRef
	}
	code, err := instagram.ShortcodeFromMediaID(r.MediaID)
	if err != nil {
		return r.PostRef
	}
	return instagram.GetPostURL(code)
}

// Detector analyzes the likers of a post
type Detector struct {
	source   Source
	observer Observer
	logger   logger.Logger
}

// Option configures a Detector
type Option func(*Detector)

// WithObserver registers an observer for progress events
func WithObserver(o Observer) Option {
	return func(d *Detector) {
		if o != nil {
			d.observer = o
		}
	}
}

// New creates a Detector reading from source
func New(source Source, log logger.Logger, opts ...Option) *Detector {
	if log == nil {
		log = logger.GetLogger()
	}
	d := &Detector{
		source:   source,
		observer: NopObserver{},
		logger:   log,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run resolves postRef, takes its first count likers and analyzes each of
// them in liker order. A profile that cannot be fetched becomes an Error
// result; resolving the post or listing its likers failing aborts the run.
// When ctx is cancelled mid-run the partial run is returned with ctx's error.
func (d *Detector) Run(ctx context.Context, postRef string, count int) (run *Run, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.ErrorWithFields("Analysis aborted unexpectedly", map[string]interface{}{
				"panic": fmt.Sprint(r),
			})
			run = nil
			err = errs.New(errs.ErrorTypeUnknown, "analysis aborted: %v", r)
		}
	}()

	if count < 1 || count > config.MaxUsersToCheck {
		return nil, errs.New(errs.ErrorTypeInvalidInput, "number of users to check must be between 1 and %d, got %d", config.MaxUsersToCheck, count)
	}
	if postRef == "" {
		return nil, errs.New(errs.ErrorTypeInvalidInput, "post reference is required")
	}

	run = &Run{
		PostRef:   postRef,
		Requested: count,
		StartedAt: time.Now(),
	}

	d.observer.OnStage("Resolving post")
	mediaID, err := d.source.MediaIDFromURL(ctx, postRef)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypePostResolutionFailed, err, "could not resolve %q", postRef)
	}
	run.MediaID = mediaID

	d.observer.OnStage("Getting likers")
	likers, err := d.source.MediaLikers(ctx, mediaID)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypePostResolutionFailed, err, "could not list likers of %s", mediaID)
	}
	run.Likers = len(likers)

	if len(likers) > count {
		likers = likers[:count]
	}

	d.logger.InfoWithFields("Analyzing likers", map[string]interface{}{
		"media_id": mediaID,
		"likers":   run.Likers,
		"checking": len(likers),
	})
	d.observer.OnStart(len(likers))

	run.Results = make([]Result, 0, len(likers))
	for i, liker := range likers {
		if err := ctx.Err(); err != nil {
			run.FinishedAt = time.Now()
			return run, err
		}

		result := d.analyzeLiker(ctx, liker)
		logger.LogAnalysis(d.logger, result.Username, string(result.Verdict), result.Score, result.Error)

		run.Results = append(run.Results, result)
		d.observer.OnResult(i, result)
	}

	run.FinishedAt = time.Now()
	d.observer.OnFinish(run)
	return run, nil
}

func (d *Detector) analyzeLiker(ctx context.Context, liker instagram.UserShort) Result {
	if liker.PK == "" {
		return ErrorResult(liker.Username, "liker has no user id")
	}

	user, err := d.source.UserInfo(ctx, string(liker.PK))
	if err != nil {
		fetchErr := errs.Wrap(errs.ErrorTypeProfileFetchFailed, err, "could not fetch %s", liker.Username)
		d.logger.WithError(fetchErr).DebugWithFields("Profile fetch failed", map[string]interface{}{
			"username": liker.Username,
			"user_id":  string(liker.PK),
		})
		return ErrorResult(liker.Username, err.Error())
	}

	profile := ProfileFromUser(user)
	if profile.Username == "" {
		profile.Username = liker.Username
	}
	return Analyze(profile)
}
