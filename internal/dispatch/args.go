package dispatch

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseUserArg parses a user argument that may be a raw ID or a mention of
// the form <@123> / <@!123>.
func ParseUserArg(arg string) (int64, error) {
	s := strings.TrimSuffix(strings.TrimPrefix(arg, "<@"), ">")
	s = strings.TrimPrefix(s, "!")
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user %q", arg)
	}
	return id, nil
}

// ParseChannelArg parses a channel argument that may be a raw ID or a
// mention of the form <#123>.
func ParseChannelArg(arg string) (int64, error) {
	s := strings.TrimSuffix(strings.TrimPrefix(arg, "<#"), ">")
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid channel %q", arg)
	}
	return id, nil
}

// ParseAmountArg parses a positive integer amount argument.
func ParseAmountArg(arg string) (int64, error) {
	amount, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || amount <= 0 {
		return 0, fmt.Errorf("invalid amount %q", arg)
	}
	return amount, nil
}

// Mention renders a user ID as a transport mention.
func Mention(userID int64) string {
	return fmt.Sprintf("<@%d>", userID)
}
