// Package clock converts between the provider's per-period MM:SS clock text
// and an absolute seconds-since-puck-drop coordinate spanning all periods.
package clock

import (
	"fmt"
	"regexp"
	"strconv"
)

// PeriodLength is the length of a regulation period in seconds. Every period,
// overtime included, is laid out on the absolute axis at this stride.
const PeriodLength = 20 * 60

var clockPattern = regexp.MustCompile(`^(\d+):(\d\d)$`)

// MalformedTimeError reports clock text that is not MM:SS or is out of range.
type MalformedTimeError struct {
	Text   string
	Reason string
}

func (e *MalformedTimeError) Error() string {
	return fmt.Sprintf("malformed clock %q: %s", e.Text, e.Reason)
}

// Seconds parses MM:SS into a number of seconds within a period.
func Seconds(text string) (int, error) {
	m := clockPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, &MalformedTimeError{Text: text, Reason: "want MM:SS"}
	}
	minutes, _ := strconv.Atoi(m[1])
	seconds, _ := strconv.Atoi(m[2])
	if seconds >= 60 {
		return 0, &MalformedTimeError{Text: text, Reason: "seconds out of range"}
	}
	total := minutes*60 + seconds
	if total > PeriodLength {
		return 0, &MalformedTimeError{Text: text, Reason: "longer than a period"}
	}
	return total, nil
}

// ToAbsolute returns the absolute game second for a period-relative clock.
// When remaining is true the text is time left in the period, otherwise time
// elapsed.
func ToAbsolute(period int, text string, remaining bool) (int, error) {
	if period < 1 {
		return 0, &MalformedTimeError{Text: text, Reason: fmt.Sprintf("period %d", period)}
	}
	secs, err := Seconds(text)
	if err != nil {
		return 0, err
	}
	elapsed := secs
	if remaining {
		elapsed = PeriodLength - secs
	}
	return (period-1)*PeriodLength + elapsed, nil
}

// ElapsedBetween returns the absolute difference in seconds between two
// period-relative clocks. Both must be read in the same direction.
func ElapsedBetween(a, b string) (int, error) {
	sa, err := Seconds(a)
	if err != nil {
		return 0, err
	}
	sb, err := Seconds(b)
	if err != nil {
		return 0, err
	}
	if sa > sb {
		return sa - sb, nil
	}
	return sb - sa, nil
}

// FormatSeconds renders seconds as MM:SS. There is no hour rollover; callers
// pass values below 6000.
func FormatSeconds(total int) string {
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// PeriodClock splits an absolute second into its period and the elapsed
// clock text within that period. A boundary second belongs to the earlier
// period, so 1200 is period 1 at 20:00.
func PeriodClock(abs int) (int, string) {
	if abs <= 0 {
		return 1, FormatSeconds(0)
	}
	period := (abs-1)/PeriodLength + 1
	return period, FormatSeconds(abs - (period-1)*PeriodLength)
}

// Remaining converts an elapsed period clock into time remaining, the form
// the provider uses for its timeRemaining field.
func Remaining(elapsedText string) (string, error) {
	secs, err := Seconds(elapsedText)
	if err != nil {
		return "", err
	}
	return FormatSeconds(PeriodLength - secs), nil
}
