package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igfakecheck/pkg/instagram"
)

func ip(v int) *int       { return &v }
func sp(v string) *string { return &v }

func TestAnalyze(t *testing.T) {
	t.Run("fake", func(t *testing.T) {
		r := Analyze(Profile{Username: "user12345", PostCount: ip(0), FollowerCount: ip(3), FollowingCount: ip(60), Bio: sp("")})

		assert.Equal(t, VerdictFake, r.Verdict)
		assert.Equal(t, "user12345", r.Username)
		assert.Equal(t, 0, *r.Posts)
		assert.Equal(t, 3, *r.Followers)
		assert.Equal(t, 60, *r.Following)
		assert.Equal(t, NoBio, r.Bio)
		assert.Equal(t, 9, r.Score)
		assert.NotEmpty(t, r.Reasons)
		assert.Empty(t, r.Error)
		assert.False(t, r.IsError())
	})

	t.Run("genuine", func(t *testing.T) {
		r := Analyze(Profile{Username: "alex99", PostCount: ip(5), FollowerCount: ip(20), FollowingCount: ip(20), Bio: sp("DM me for forex tips")})

		assert.Equal(t, VerdictGenuine, r.Verdict)
		assert.Equal(t, 2, r.Score)
		assert.Equal(t, "DM me for forex tips", r.Bio)
	})
}

func TestAnalyzeMissingBioScoresAsEmpty(t *testing.T) {
	// Scoring "No bio" would add the short-bio point and flip the verdict
	p := Profile{Username: "someone", PostCount: ip(0), FollowerCount: ip(80), FollowingCount: ip(80)}

	r := Analyze(p)
	assert.Equal(t, NoBio, r.Bio)
	assert.Equal(t, 2, r.Score)
	assert.Equal(t, VerdictGenuine, r.Verdict)

	withPlaceholder := Features{Posts: 0, Followers: 80, Following: 80, Bio: NoBio, Username: "someone"}
	assert.Equal(t, 3, Score(withPlaceholder))
}

func TestAnalyzeKeepsBioVerbatim(t *testing.T) {
	bio := "  Café ☕ & <croissants>  "
	r := Analyze(Profile{Username: "baker", PostCount: ip(40), FollowerCount: ip(900), FollowingCount: ip(300), Bio: &bio})
	assert.Equal(t, bio, r.Bio)
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name     string
		profile  Profile
		username string
		message  string
	}{
		{
			name:     "missing username",
			profile:  Profile{PostCount: ip(1), FollowerCount: ip(1), FollowingCount: ip(1)},
			username: UnknownUsername,
			message:  "profile has no username",
		},
		{
			name:     "missing post count",
			profile:  Profile{Username: "a", FollowerCount: ip(1), FollowingCount: ip(1)},
			username: "a",
			message:  "profile is missing post count",
		},
		{
			name:     "missing follower count",
			profile:  Profile{Username: "b", PostCount: ip(1), FollowingCount: ip(1)},
			username: "b",
			message:  "profile is missing follower count",
		},
		{
			name:     "negative following count",
			profile:  Profile{Username: "c", PostCount: ip(1), FollowerCount: ip(1), FollowingCount: ip(-4)},
			username: "c",
			message:  "profile has negative following count -4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Analyze(tt.profile)
			assert.True(t, r.IsError())
			assert.Equal(t, VerdictError, r.Verdict)
			assert.Equal(t, tt.username, r.Username)
			assert.Equal(t, tt.message, r.Error)
			assert.Nil(t, r.Posts)
			assert.Empty(t, r.Bio)
			assert.Zero(t, r.Score)
		})
	}
}

func TestProfileFromUser(t *testing.T) {
	u := &instagram.User{
		PK:             "1",
		Username:       "marta",
		MediaCount:     ip(12),
		FollowerCount:  ip(340),
		FollowingCount: ip(280),
		Biography:      sp("Lisbon"),
	}

	p := ProfileFromUser(u)
	assert.Equal(t, "marta", p.Username)
	require.NotNil(t, p.PostCount)
	assert.Equal(t, 12, *p.PostCount)
	assert.Equal(t, 340, *p.FollowerCount)
	assert.Equal(t, 280, *p.FollowingCount)
	assert.Equal(t, "Lisbon", *p.Bio)

	assert.Equal(t, Profile{}, ProfileFromUser(nil))
}

func TestDisplayBio(t *testing.T) {
	assert.Equal(t, NoBio, DisplayBio(nil))
	assert.Equal(t, NoBio, DisplayBio(sp("")))
	assert.Equal(t, " ", DisplayBio(sp(" ")))
	assert.Equal(t, "hello", DisplayBio(sp("hello")))
}
