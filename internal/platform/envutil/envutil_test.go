package envutil

import "testing"

func TestStr(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_STR", "  value  ")
	if got := Str("ENVUTIL_TEST_STR", "def"); got != "value" {
		t.Fatalf("got %q, want trimmed value", got)
	}
	if got := Str("ENVUTIL_TEST_UNSET", "def"); got != "def" {
		t.Fatalf("got %q, want default", got)
	}
}

func TestInt(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_INT", "42")
	if got := Int("ENVUTIL_TEST_INT", 7); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
	t.Setenv("ENVUTIL_TEST_INT", "nope")
	if got := Int("ENVUTIL_TEST_INT", 7); got != 7 {
		t.Fatalf("got %d, want default on junk", got)
	}
}

func TestBool(t *testing.T) {
	cases := map[string]bool{
		"1": true, "true": true, "YES": true, "on": true,
		"0": false, "false": false, "No": false, "off": false,
		"maybe": false,
	}
	for raw, want := range cases {
		t.Setenv("ENVUTIL_TEST_BOOL", raw)
		if got := Bool("ENVUTIL_TEST_BOOL", false); got != want {
			t.Fatalf("Bool(%q)=%v, want %v", raw, got, want)
		}
	}
	if got := Bool("ENVUTIL_TEST_BOOL_UNSET", true); got != true {
		t.Fatal("unset should return default")
	}
}
