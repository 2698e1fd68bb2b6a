package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLogRegistryFromVerbosity(t *testing.T) {
	cases := []struct {
		verbose int
		want    int
	}{
		{0, 25}, // NoticeLevel
		{1, 4},  // logrus.InfoLevel
		{2, 5},  // logrus.DebugLevel
		{10, 6}, // floored at logrus.TraceLevel
	}
	for _, c := range cases {
		r := NewLogRegistryFromVerbosity(c.verbose)
		got := int(r.GetLogLevel("anything"))
		if got != c.want {
			t.Errorf("verbose=%d: got level %d, want %d", c.verbose, got, c.want)
		}
	}
}

func TestLogRegistryPerNameOverride(t *testing.T) {
	r, err := NewLogRegistry("root.build=debug")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.GetLogLevel("root.build") != levelMap["debug"] {
		t.Errorf("expected debug level for root.build")
	}
	if r.GetLogLevel("root.other") != defaultLogLevel {
		t.Errorf("expected default level for unconfigured name")
	}
}

func TestEnabledPlacesNoticeBetweenInfoAndWarning(t *testing.T) {
	if enabled(NoticeLevel, logrus.InfoLevel) {
		t.Error("INFO must stay hidden at the default NOTICE threshold")
	}
	if !enabled(NoticeLevel, NoticeLevel) {
		t.Error("NOTICE itself must pass at the default NOTICE threshold")
	}
	if !enabled(NoticeLevel, logrus.WarnLevel) {
		t.Error("WARNING must always pass at the default NOTICE threshold")
	}
	if enabled(logrus.InfoLevel, logrus.DebugLevel) {
		t.Error("DEBUG must stay hidden until the threshold is lowered past INFO")
	}
	if !enabled(logrus.TraceLevel, logrus.TraceLevel) {
		t.Error("TRACE must pass once the threshold is floored at TRACE")
	}
}

func TestNoOpLogDoesNotPanic(t *testing.T) {
	log := NewNoOpLog()
	log.WithField("k", "v").Info("hi")
	log.Notice("hello")
}
