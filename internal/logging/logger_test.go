package logging

import (
	"testing"
	"time"
)

func resetToDefaults(t *testing.T) {
	t.Helper()
	Configure(Options{DebugMode: false})
}

func TestConfigure_DisabledByDefault(t *testing.T) {
	resetToDefaults(t)
	if IsDebugMode() {
		t.Errorf("expected debug mode disabled by default")
	}
	if IsCategoryEnabled(CategoryEval) {
		t.Errorf("expected categories disabled when debug mode is off")
	}
}

func TestConfigure_EnablesDebugMode(t *testing.T) {
	defer resetToDefaults(t)
	if err := Configure(Options{DebugMode: true, Level: "debug"}); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if !IsDebugMode() {
		t.Errorf("expected debug mode enabled")
	}
	if !IsCategoryEnabled(CategoryEval) {
		t.Errorf("expected unspecified category to default to enabled")
	}
}

func TestConfigure_PerCategoryToggle(t *testing.T) {
	defer resetToDefaults(t)
	err := Configure(Options{
		DebugMode: true,
		Level:     "debug",
		Categories: map[string]bool{
			string(CategoryEval):   true,
			string(CategoryParser): false,
		},
	})
	if err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if !IsCategoryEnabled(CategoryEval) {
		t.Errorf("expected eval category enabled")
	}
	if IsCategoryEnabled(CategoryParser) {
		t.Errorf("expected parser category disabled")
	}
	if !IsCategoryEnabled(CategoryDispatch) {
		t.Errorf("expected unlisted category to default to enabled")
	}
}

func TestLoggerConvenienceFunctions_NoPanic(t *testing.T) {
	defer resetToDefaults(t)
	Configure(Options{DebugMode: true, Level: "debug"})

	Boot("boot message %d", 1)
	BootDebug("boot debug %d", 1)
	BootWarn("boot warn %d", 1)
	BootError("boot error %d", 1)
	Parser("parse %s", "ok")
	Eval("eval %s", "ok")
	Dispatch("dispatch %s", "ok")
	Scheduler("scheduler %s", "ok")
	HostBridge("hostbridge %s", "ok")
	Query("query %s", "ok")
	Metaprog("metaprog %s", "ok")
	Object("object %s", "ok")
	Transform("transform %s", "ok")
}

func TestLoggerConvenienceFunctions_NoPanicWhenDisabled(t *testing.T) {
	resetToDefaults(t)
	Boot("boot message")
	Eval("eval message")
	Dispatch("dispatch message")
}

func TestTimer_Stop(t *testing.T) {
	defer resetToDefaults(t)
	Configure(Options{DebugMode: true, Level: "debug"})

	timer := StartTimer(CategoryEval, "test-op")
	time.Sleep(time.Millisecond)
	elapsed := timer.Stop()
	if elapsed <= 0 {
		t.Errorf("expected positive elapsed duration")
	}
}

func TestTimer_StopWithThreshold(t *testing.T) {
	defer resetToDefaults(t)
	Configure(Options{DebugMode: true, Level: "debug"})

	timer := StartTimer(CategoryScheduler, "slow-op")
	time.Sleep(2 * time.Millisecond)
	elapsed := timer.StopWithThreshold(time.Microsecond)
	if elapsed <= 0 {
		t.Errorf("expected positive elapsed duration")
	}
}

func TestGet_ReturnsScopedLogger(t *testing.T) {
	defer resetToDefaults(t)
	Configure(Options{DebugMode: true, Level: "info"})

	l := Get(CategoryDispatch)
	if l.category != CategoryDispatch {
		t.Errorf("expected category %s, got %s", CategoryDispatch, l.category)
	}
	if !l.enabled {
		t.Errorf("expected logger enabled")
	}
}
