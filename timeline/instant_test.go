package timeline

import (
	"testing"
	"time"
)

func TestFormatInstantTime(t *testing.T) {
	at := time.Date(2021, 7, 28, 14, 11, 8, 123*int(time.Millisecond), time.UTC)
	got := FormatInstantTime(at)
	want := "20210728141108123"
	if got != want {
		t.Errorf("FormatInstantTime = %s, want %s", got, want)
	}
}

func TestInstantTimestampRoundTrip(t *testing.T) {
	at := time.Date(2021, 7, 28, 14, 11, 8, 123*int(time.Millisecond), time.UTC)
	in := Instant{Time: FormatInstantTime(at), Action: ActionCommit}

	back, err := in.Timestamp()
	if err != nil {
		t.Fatalf("Timestamp failed: %v", err)
	}
	if !back.Equal(at) {
		t.Errorf("Timestamp = %v, want %v", back, at)
	}
}

func TestInstantTimestampMalformed(t *testing.T) {
	for _, ts := range []string{"", "2021", "20210728141108", "2021072814110812x"} {
		in := Instant{Time: ts, Action: ActionCommit}
		if _, err := in.Timestamp(); err == nil {
			t.Errorf("Timestamp(%q) should fail", ts)
		}
	}
}

func TestInstantFileName(t *testing.T) {
	tests := []struct {
		instant Instant
		want    string
	}{
		{Instant{Time: "20210728141108123", Action: ActionCommit}, "20210728141108123.commit.avro"},
		{Instant{Time: "20210728141108123", Action: ActionReplaceCommit}, "20210728141108123.replacecommit.avro"},
	}
	for _, tt := range tests {
		if got := tt.instant.FileName(); got != tt.want {
			t.Errorf("FileName = %s, want %s", got, tt.want)
		}
	}
}

func TestParseInstantFileName(t *testing.T) {
	tests := []struct {
		name string
		want Instant
		ok   bool
	}{
		{"20210728141108123.commit.avro", Instant{Time: "20210728141108123", Action: ActionCommit}, true},
		{"20210728141108123.replacecommit.avro", Instant{Time: "20210728141108123", Action: ActionReplaceCommit}, true},
		{"20210728141108123.commit", Instant{}, false},
		{"20210728141108123.clean.avro", Instant{}, false},
		{"notatimestamp00xx.commit.avro", Instant{}, false},
		{"2021072814110812.commit.avro", Instant{}, false},
		{"table.json", Instant{}, false},
	}
	for _, tt := range tests {
		got, ok := parseInstantFileName(tt.name)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseInstantFileName(%s) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseAsOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"20210728141108123", "20210728141108123"},
		{"20210728141108", "20210728141108999"},
		{"2021-07-28 14:11:08.000", "20210728141108000"},
		{"2021-07-28 14:11:08.123", "20210728141108123"},
		{"2021-07-28", "20210728235959999"},
	}
	for _, tt := range tests {
		got, err := ParseAsOf(tt.in)
		if err != nil {
			t.Fatalf("ParseAsOf(%s) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseAsOf(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseAsOfDateCoversWholeDay(t *testing.T) {
	ts, err := ParseAsOf("2026-08-30")
	if err != nil {
		t.Fatalf("ParseAsOf failed: %v", err)
	}
	if len(ts) != instantTimeLen {
		t.Fatalf("ParseAsOf(2026-08-30) = %s, want a %d-digit instant", ts, instantTimeLen)
	}
	if CompareInstantTimes("20260830081542317", ts) > 0 {
		t.Errorf("a commit during the day should sort at or before the day's as-of point %s", ts)
	}
}

func TestParseAsOfInvalid(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2021/07/28", "2021-07-28 14:11"} {
		if _, err := ParseAsOf(in); err == nil {
			t.Errorf("ParseAsOf(%q) should fail", in)
		}
	}
}

func TestCompareInstantTimes(t *testing.T) {
	if CompareInstantTimes("000", "20210728141108123") >= 0 {
		t.Error("begin sentinel should sort before any instant")
	}
	if CompareInstantTimes("20210728141108123", "20210728141108123") != 0 {
		t.Error("equal instants should compare equal")
	}
	if CompareInstantTimes("20210728141108124", "20210728141108123") <= 0 {
		t.Error("later instant should compare greater")
	}
}
