package detector

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// FakeThreshold is the suspicion score from which an account counts as fake
const FakeThreshold = 4

// Features are the profile attributes the classifier looks at. A missing bio
// is the empty string.
type Features struct {
	Posts     int
	Followers int
	Following int
	Bio       string
	Username  string
}

// Reason is one classifier rule that matched
type Reason struct {
	Rule   string `json:"rule"`
	Points int    `json:"points"`
}

type rule struct {
	name   string
	points int
	match  func(f Features) bool
}

// rules are evaluated independently and their points summed
var rules = []rule{
	{
		name:   "no posts",
		points: 2,
		match:  func(f Features) bool { return f.Posts == 0 },
	},
	{
		name:   "10 or fewer followers",
		points: 1,
		match:  func(f Features) bool { return f.Followers <= 10 },
	},
	{
		name:   "following more than 5x followers",
		points: 2,
		match:  func(f Features) bool { return f.Followers > 0 && f.Following > 5*f.Followers },
	},
	{
		name:   "no followers but following 10+",
		points: 2,
		match:  func(f Features) bool { return f.Followers == 0 && f.Following >= 10 },
	},
	{
		name:   "spam keyword in bio",
		points: 2,
		match:  func(f Features) bool { return f.Bio != "" && ContainsSpam(f.Bio) },
	},
	{
		// Only when the spam rule did not match
		name:   "bio shorter than 10 characters",
		points: 1,
		match: func(f Features) bool {
			return f.Bio != "" && !ContainsSpam(f.Bio) && utf8.RuneCountInString(strings.TrimSpace(f.Bio)) < 10
		},
	},
	{
		name:   "generated-looking username",
		points: 2,
		match:  func(f Features) bool { return generatedUsername(f.Username) },
	},
	{
		name:   "mass following with no audience",
		points: 2,
		match:  func(f Features) bool { return f.Posts <= 1 && f.Followers <= 5 && f.Following >= 50 },
	},
	{
		name:   "stock motivated bio",
		points: 2,
		match: func(f Features) bool {
			return f.Posts == 0 && f.Followers <= 5 && strings.Contains(strings.ToLower(f.Bio), MotivatedKeyword)
		},
	},
}

func generatedUsername(username string) bool {
	digits := 0
	for _, r := range username {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	lower := strings.ToLower(username)
	return digits > 4 || strings.HasPrefix(lower, "user") || strings.Contains(lower, "insta")
}

// Explain returns the rules that match f, in evaluation order
func Explain(f Features) []Reason {
	var reasons []Reason
	for _, r := range rules {
		if r.match(f) {
			reasons = append(reasons, Reason{Rule: r.name, Points: r.points})
		}
	}
	return reasons
}

// Score returns the suspicion score of f
func Score(f Features) int {
	score := 0
	for _, r := range Explain(f) {
		score += r.Points
	}
	return score
}

// IsFake reports whether an account with these attributes looks fake
func IsFake(posts, followers, following int, bio, username string) bool {
	return Score(Features{
		Posts:     posts,
		Followers: followers,
		Following: following,
		Bio:       bio,
		Username:  username,
	}) >= FakeThreshold
}
