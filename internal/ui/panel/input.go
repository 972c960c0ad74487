package panel

import (
	"strconv"
	"strings"
)

const maxField = 59

// SecondsFromInput converts the minutes and seconds entry text into a duration.
// A field that is not a number in [0, 59] counts as zero.
func SecondsFromInput(minutes, seconds string) int {
	return parseField(minutes)*60 + parseField(seconds)
}

func parseField(value string) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed < 0 || parsed > maxField {
		return 0
	}
	return parsed
}

// PresetLabel renders a preset button caption such as "1 minute" or "5 minutes".
func PresetLabel(minutes int) string {
	if minutes == 1 {
		return "1 minute"
	}
	return strconv.Itoa(minutes) + " minutes"
}
