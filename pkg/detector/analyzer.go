package detector

import (
	"fmt"

	"igfakecheck/pkg/instagram"
)

// NoBio is displayed in place of an absent or empty biography
const NoBio = "No bio"

// UnknownUsername stands in when a profile has no username
const UnknownUsername = "unknown"

// Verdict is the outcome of analyzing one account
type Verdict string

const (
	VerdictFake    Verdict = "Yes"
	VerdictGenuine Verdict = "No"
	VerdictError   Verdict = "Error"
)

// Profile is a read-only snapshot of a fetched account. Nil fields were
// absent from the source.
type Profile struct {
	Username       string
	PostCount      *int
	FollowerCount  *int
	FollowingCount *int
	Bio            *string
}

// ProfileFromUser builds a snapshot from an API user
func ProfileFromUser(u *instagram.User) Profile {
	if u == nil {
		return Profile{}
	}
	return Profile{
		Username:       u.Username,
		PostCount:      u.MediaCount,
		FollowerCount:  u.FollowerCount,
		FollowingCount: u.FollowingCount,
		Bio:            u.Biography,
	}
}

// Result is the analysis of one account as it appears in reports. Error rows
// carry only Username, Verdict and Error.
type Result struct {
	Username  string   `json:"Username"`
	Posts     *int     `json:"Posts,omitempty"`
	Followers *int     `json:"Followers,omitempty"`
	Following *int     `json:"Following,omitempty"`
	Bio       string   `json:"Bio,omitempty"`
	Verdict   Verdict  `json:"Fake Account"`
	Error     string   `json:"Error,omitempty"`
	Score     int      `json:"Score,omitempty"`
	Reasons   []Reason `json:"Reasons,omitempty"`
}

// IsError reports whether the account could not be analyzed
func (r Result) IsError() bool {
	return r.Verdict == VerdictError
}

// ErrorResult is the row recorded for an account that could not be analyzed
func ErrorResult(username, message string) Result {
	if username == "" {
		username = UnknownUsername
	}
	return Result{
		Username: username,
		Verdict:  VerdictError,
		Error:    message,
	}
}

// DisplayBio returns the biography as shown to users
func DisplayBio(bio *string) string {
	if bio == nil || *bio == "" {
		return NoBio
	}
	return *bio
}

// Analyze classifies a profile. Missing or invalid fields produce an Error
// result instead of a verdict.
func Analyze(p Profile) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = ErrorResult(p.Username, fmt.Sprintf("analysis failed: %v", r))
		}
	}()

	if p.Username == "" {
		return ErrorResult("", "profile has no username")
	}

	posts, err := count("post count", p.PostCount)
	if err != nil {
		return ErrorResult(p.Username, err.Error())
	}
	followers, err := count("follower count", p.FollowerCount)
	if err != nil {
		return ErrorResult(p.Username, err.Error())
	}
	following, err := count("following count", p.FollowingCount)
	if err != nil {
		return ErrorResult(p.Username, err.Error())
	}

	// Scored on the real biography, the placeholder is for display only
	var bio string
	if p.Bio != nil {
		bio = *p.Bio
	}

	features := Features{
		Posts:     posts,
		Followers: followers,
		Following: following,
		Bio:       bio,
		Username:  p.Username,
	}
	reasons := Explain(features)
	score := 0
	for _, r := range reasons {
		score += r.Points
	}

	verdict := VerdictGenuine
	if score >= FakeThreshold {
		verdict = VerdictFake
	}

	return Result{
		Username:  p.Username,
		Posts:     intPtr(posts),
		Followers: intPtr(followers),
		Following: intPtr(following),
		Bio:       DisplayBio(p.Bio),
		Verdict:   verdict,
		Score:     score,
		Reasons:   reasons,
	}
}

func count(field string, v *int) (int, error) {
	if v == nil {
		return 0, fmt.Errorf("profile is missing %s", field)
	}
	if *v < 0 {
		return 0, fmt.Errorf("profile has negative %s %d", field, *v)
	}
	return *v, nil
}

func intPtr(v int) *int {
	return &v
}
