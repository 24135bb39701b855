package logger

import (
	"os"
	"testing"
)

func TestSetColorMode(t *testing.T) {
	original := useColors
	defer func() { useColors = original }()

	SetColorMode(false)
	if useColors {
		t.Error("expected useColors to be false when SetColorMode(false) is called")
	}
}

func TestSetQuietMode(t *testing.T) {
	original := quietMode
	defer func() { quietMode = original }()

	SetQuietMode(true)
	if !quietMode {
		t.Error("expected quietMode to be true")
	}

	SetQuietMode(false)
	if quietMode {
		t.Error("expected quietMode to be false")
	}
}

func TestSupportsColorRespectsEnv(t *testing.T) {
	originalNoColor := os.Getenv("NO_COLOR")
	originalForceColor := os.Getenv("FORCE_COLOR")
	defer func() {
		os.Setenv("NO_COLOR", originalNoColor)
		os.Setenv("FORCE_COLOR", originalForceColor)
	}()

	os.Setenv("NO_COLOR", "1")
	os.Unsetenv("FORCE_COLOR")
	if supportsColor() {
		t.Error("expected supportsColor to return false when NO_COLOR is set")
	}

	os.Unsetenv("NO_COLOR")
	os.Setenv("FORCE_COLOR", "1")
	if !supportsColor() {
		t.Error("expected supportsColor to return true when FORCE_COLOR is set")
	}
}

func TestColorizeRespectsUseColors(t *testing.T) {
	original := useColors
	defer func() { useColors = original }()

	useColors = false
	if got := colorize(Red, "hi"); got != "hi" {
		t.Errorf("expected uncolored text, got %q", got)
	}

	useColors = true
	if got := colorize(Red, "hi"); got != Red+"hi"+Reset {
		t.Errorf("expected colored text, got %q", got)
	}
}

func TestStoreAndGetMessages(t *testing.T) {
	logMutex.Lock()
	logMessages = nil
	logMutex.Unlock()

	originalQuiet := quietMode
	defer func() { quietMode = originalQuiet }()
	quietMode = false

	Info("hello")
	msgs := GetStoredMessages()
	if len(msgs) != 1 || msgs[0].Message != "hello" {
		t.Errorf("expected one stored message 'hello', got %+v", msgs)
	}
}

func TestCoreAdapterDebug(t *testing.T) {
	logMutex.Lock()
	logMessages = nil
	logMutex.Unlock()

	originalQuiet := quietMode
	defer func() { quietMode = originalQuiet }()
	quietMode = false

	var a CoreAdapter
	a.Debug("truncated_stn_table", "00003.mpls: play item 2")

	msgs := GetStoredMessages()
	if len(msgs) != 1 {
		t.Fatalf("expected one stored message, got %d", len(msgs))
	}
	want := "[truncated_stn_table] 00003.mpls: play item 2"
	if msgs[0].Message != want {
		t.Errorf("got %q, want %q", msgs[0].Message, want)
	}
}

func TestQuietModeSuppressesOutput(t *testing.T) {
	logMutex.Lock()
	logMessages = nil
	logMutex.Unlock()

	originalQuiet := quietMode
	defer func() { quietMode = originalQuiet }()
	quietMode = true

	Info("should not be stored")
	var a CoreAdapter
	a.Debug("code", "should not be stored either")

	if msgs := GetStoredMessages(); len(msgs) != 0 {
		t.Errorf("expected no stored messages in quiet mode, got %+v", msgs)
	}
}
