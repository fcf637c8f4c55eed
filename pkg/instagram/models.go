package instagram

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is an Instagram primary key. The API sends it as a JSON number in some
// responses and as a string in others.
type ID string

// UnmarshalJSON accepts both numeric and string encodings
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

// UserShort is the lightweight user stub returned in liker lists
type UserShort struct {
	PK        ID     `json:"pk"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	IsPrivate bool   `json:"is_private"`
}

// User is a full user profile. Counters and biography are pointers so that a
// field missing from the response can be told apart from a zero value.
type User struct {
	PK             ID      `json:"pk"`
	Username       string  `json:"username"`
	FullName       string  `json:"full_name"`
	IsPrivate      bool    `json:"is_private"`
	IsVerified     bool    `json:"is_verified"`
	MediaCount     *int    `json:"media_count"`
	FollowerCount  *int    `json:"follower_count"`
	FollowingCount *int    `json:"following_count"`
	Biography      *string `json:"biography"`
	ExternalURL    string  `json:"external_url"`
}

// apiStatus holds the fields every private API response carries
type apiStatus struct {
	Status            string `json:"status"`
	Message           string `json:"message"`
	ErrorType         string `json:"error_type"`
	TwoFactorRequired bool   `json:"two_factor_required"`
	Challenge         *struct {
		URL string `json:"url"`
	} `json:"challenge"`
}

type loginResponse struct {
	apiStatus
	LoggedInUser UserShort `json:"logged_in_user"`
}

type currentUserResponse struct {
	apiStatus
	User UserShort `json:"user"`
}

type likersResponse struct {
	apiStatus
	Users     []UserShort `json:"users"`
	UserCount int         `json:"user_count"`
}

type userInfoResponse struct {
	apiStatus
	User User `json:"user"`
}
