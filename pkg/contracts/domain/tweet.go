package domain

import (
	"strconv"
)

// TweetColumns is the fixed column order of per-username and per-date tweet files
var TweetColumns = []string{
	"date", "tweet", "username", "name", "link", "nlikes", "nreplies", "nretweets",
}

// TweetTimestampLayout is the layout of TweetRecord.Date
const TweetTimestampLayout = "2006-01-02 15:04:05"

// TweetRecord is a raw tweet as returned by the acquisition source for one username query
type TweetRecord struct {
	Date      string `json:"date" validate:"required"`
	Tweet     string `json:"tweet"`
	Username  string `json:"username" validate:"required"`
	Name      string `json:"name"`
	Link      string `json:"link"`
	NLikes    int    `json:"nlikes" validate:"min=0"`
	NReplies  int    `json:"nreplies" validate:"min=0"`
	NRetweets int    `json:"nretweets" validate:"min=0"`
}

// Row renders the record in TweetColumns order
func (t TweetRecord) Row() []string {
	return []string{
		t.Date,
		t.Tweet,
		t.Username,
		t.Name,
		t.Link,
		strconv.Itoa(t.NLikes),
		strconv.Itoa(t.NReplies),
		strconv.Itoa(t.NRetweets),
	}
}

// DayKey returns the calendar day of the record's timestamp
func (t TweetRecord) DayKey() string {
	return TruncateToDay(t.Date)
}

// TruncateToDay cuts a timestamp string at its first whitespace.
// "2020-12-27 13:30:00" becomes "2020-12-27".
func TruncateToDay(timestamp string) string {
	for i, r := range timestamp {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return timestamp[:i]
		}
	}
	return timestamp
}
