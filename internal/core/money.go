package core

import (
	"regexp"
	"strconv"
	"strings"
)

// HelpMessage is shown when an expense message cannot be parsed.
const HelpMessage = "I can not understand the message. Write a message in a format, e.g.:\n1000 cafe"

// "digits and spaces, a space, the rest"; anchored only at the start.
var messageRe = regexp.MustCompile(`^([\d ]+) (.*)`)

// ParseAmount converts a whole-unit amount that may use spaces as
// thousands separators ("1 000") into an integer.
func ParseAmount(s string) (int64, error) {
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// ParseMessage splits a raw text like "1 500 taxi home" into amount and
// lowercased category text.
func ParseMessage(raw string) (Message, error) {
	m := messageRe.FindStringSubmatch(raw)
	if m == nil || m[1] == "" || m[2] == "" {
		return Message{}, &MalformedInputError{Message: HelpMessage}
	}
	amount, err := ParseAmount(m[1])
	if err != nil {
		return Message{}, &MalformedInputError{Message: HelpMessage}
	}
	text := strings.ToLower(strings.TrimSpace(m[2]))
	if text == "" {
		return Message{}, &MalformedInputError{Message: HelpMessage}
	}
	return Message{Amount: amount, CategoryText: text}, nil
}
