package intent

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Shivanand-hulikatti/ticket-booking/internal/model"
)

var (
	bookPattern = regexp.MustCompile(`(?i)\bbook\s+(?:me\s+)?(?:(\S+)\s+)?tickets?\s+(?:for|to)\s+(.+)$`)
	listPattern = regexp.MustCompile(`(?i)\b(?:show|list|what|which)\b.*\bevents?\b`)

	numberWords = map[string]int{
		"a": 1, "an": 1,
		"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
		"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	}
)

// Parse is the deterministic fallback parser. It recognises
// "book <quantity> ticket(s) for <event>" and list-style questions such
// as "show events" or "what events are on".
func Parse(text string) (Intent, error) {
	text = strings.TrimSpace(text)

	if m := bookPattern.FindStringSubmatch(text); m != nil {
		event := eventName(strings.TrimRight(m[2], " .!?"))
		if event != "" {
			tickets, ok := parseQuantity(m[1])
			if !ok {
				return nil, ErrUnrecognized
			}
			return Book{Event: event, Tickets: tickets}, nil
		}
	}

	if listPattern.MatchString(text) {
		return List{}, nil
	}

	return nil, ErrUnrecognized
}

// parseQuantity maps digits and the words one to ten onto a count.
// A missing or non-numeric word counts as one. A number above
// model.MaxTickets, or too long to parse, is rejected.
func parseQuantity(word string) (int, bool) {
	word = strings.ToLower(strings.TrimSpace(word))
	if n, ok := numberWords[word]; ok {
		return n, true
	}
	if !isDigits(word) {
		return 1, true
	}
	n, err := strconv.Atoi(word)
	if err != nil || n > model.MaxTickets {
		return 0, false
	}
	if n == 0 {
		return 1, true
	}
	return n, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// eventName trims and title-cases an event name. Only first letters are
// raised, so "DJ Set" keeps its capitals.
func eventName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// A Caser is stateful, so each call gets its own.
	return cases.Title(language.English, cases.NoLower).String(s)
}
