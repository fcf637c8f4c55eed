package detector

import "strings"

// SpamKeywords are bio substrings typical of spam and engagement-bait accounts
var SpamKeywords = []string{"bitcoin", "forex", "follow back", "promo", "dm", "cashapp"}

// MotivatedKeyword marks the stock "motivated" bios of freshly created bots
const MotivatedKeyword = "motivated"

// SpamKeyword returns the first spam keyword bio contains, ignoring case
func SpamKeyword(bio string) (string, bool) {
	lower := strings.ToLower(bio)
	for _, keyword := range SpamKeywords {
		if strings.Contains(lower, keyword) {
			return keyword, true
		}
	}
	return "", false
}

// ContainsSpam reports whether bio contains any spam keyword
func ContainsSpam(bio string) bool {
	_, ok := SpamKeyword(bio)
	return ok
}
