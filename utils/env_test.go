package utils

import "testing"

func TestGetEnvBool(t *testing.T) {
	cases := map[string]bool{
		"true":  true,
		"TRUE":  true,
		" 1 ":   true,
		"false": false,
		"0":     false,
		"yes":   false,
		"":      false,
	}
	for value, want := range cases {
		t.Setenv("CALL_ANALYSIS_TEST_FLAG", value)
		if got := GetEnvBool("CALL_ANALYSIS_TEST_FLAG"); got != want {
			t.Errorf("GetEnvBool(%q) = %v, want %v", value, got, want)
		}
	}
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("CALL_ANALYSIS_TEST_PORT", "")
	if got := GetEnvOrDefault("CALL_ANALYSIS_TEST_PORT", "8080"); got != "8080" {
		t.Fatalf("expected default, got %q", got)
	}
	t.Setenv("CALL_ANALYSIS_TEST_PORT", "9090")
	if got := GetEnvOrDefault("CALL_ANALYSIS_TEST_PORT", "8080"); got != "9090" {
		t.Fatalf("expected env value, got %q", got)
	}
}

func TestMustGetEnvPanicsWhenMissing(t *testing.T) {
	t.Setenv("CALL_ANALYSIS_TEST_REQUIRED", "")
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustGetEnv("CALL_ANALYSIS_TEST_REQUIRED")
}
