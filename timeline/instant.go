// Package timeline implements the commit timeline of a table: instant
// allocation, timeline loading and resolution, and commit manifests.
//
// Every successful write produces an instant, a millisecond-granularity
// timestamp of the form yyyyMMddHHmmssSSS. The ordered set of completed
// instants is the table's history; snapshot, time-travel, and incremental
// reads are all resolved against it.
package timeline

import (
	"fmt"
	"strings"
	"time"
)

// Action represents the kind of operation an instant recorded.
type Action string

const (
	// ActionCommit is a regular write commit (insert, upsert, delete).
	ActionCommit Action = "commit"
	// ActionReplaceCommit is a commit that replaced whole partitions.
	ActionReplaceCommit Action = "replacecommit"
)

// InstantTimeLayout is the layout of the second-granularity part of an
// instant timestamp. The final three digits are milliseconds.
const InstantTimeLayout = "20060102150405"

// instantTimeLen is the length of a full instant timestamp.
const instantTimeLen = len(InstantTimeLayout) + 3

// Instant identifies one completed operation on the timeline.
type Instant struct {
	Time   string
	Action Action
}

// Timestamp returns the instant time as a time.Time.
func (i Instant) Timestamp() (time.Time, error) {
	if len(i.Time) != instantTimeLen {
		return time.Time{}, fmt.Errorf("malformed instant time: %s", i.Time)
	}
	sec, err := time.Parse(InstantTimeLayout, i.Time[:len(InstantTimeLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed instant time %s: %w", i.Time, err)
	}
	var ms int
	if _, err := fmt.Sscanf(i.Time[len(InstantTimeLayout):], "%03d", &ms); err != nil {
		return time.Time{}, fmt.Errorf("malformed instant time %s: %w", i.Time, err)
	}
	return sec.Add(time.Duration(ms) * time.Millisecond), nil
}

// FileName returns the timeline file name for this instant.
func (i Instant) FileName() string {
	return fmt.Sprintf("%s.%s.avro", i.Time, i.Action)
}

// FormatInstantTime formats a time as an instant timestamp.
func FormatInstantTime(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s%03d", t.Format(InstantTimeLayout), t.Nanosecond()/int(time.Millisecond))
}

// parseInstantFileName parses a timeline file name into an Instant.
func parseInstantFileName(name string) (Instant, bool) {
	parts := strings.Split(name, ".")
	if len(parts) != 3 || parts[2] != "avro" {
		return Instant{}, false
	}
	if len(parts[0]) != instantTimeLen || !allDigits(parts[0]) {
		return Instant{}, false
	}

	action := Action(parts[1])
	if action != ActionCommit && action != ActionReplaceCommit {
		return Instant{}, false
	}

	return Instant{Time: parts[0], Action: action}, true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// asOfLayouts are the accepted forms of an absolute as-of point, tried in
// order. Coarser forms resolve to the end of their precision (a bare date
// to the end of that day) so commits made within the requested range are
// visible: prefix is the digit rendering of the parsed precision and pad
// completes it to a full 17-digit instant.
var asOfLayouts = []struct {
	layout string
	prefix string
	pad    string
}{
	{"20060102150405", "20060102150405", "999"},
	{"2006-01-02 15:04:05.000", "", ""},
	{"2006-01-02", "20060102", "235959999"},
}

// ParseAsOf parses an absolute as-of point into an instant-comparable
// timestamp. Accepted forms: an exact instant time (yyyyMMddHHmmssSSS),
// yyyyMMddHHmmss, yyyy-MM-dd HH:mm:ss.SSS, and yyyy-MM-dd.
func ParseAsOf(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) == instantTimeLen && allDigits(s) {
		return s, nil
	}
	for _, l := range asOfLayouts {
		t, err := time.Parse(l.layout, s)
		if err != nil {
			continue
		}
		if l.pad != "" {
			return t.Format(l.prefix) + l.pad, nil
		}
		return FormatInstantTime(t), nil
	}
	return "", fmt.Errorf("unrecognized as-of instant: %q", s)
}

// CompareInstantTimes compares two instant timestamps. Timestamps are
// plain digit strings, so ordering is lexicographic.
func CompareInstantTimes(a, b string) int {
	return strings.Compare(a, b)
}
