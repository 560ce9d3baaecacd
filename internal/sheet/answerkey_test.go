package sheet

import (
	"errors"
	"testing"
)

func TestParseAnswerKey_Valid(t *testing.T) {
	layout := DefaultLayout()
	key, err := ParseAnswerKey([]byte(`{"1": 0, "2": 3, "100": 1}`), layout)
	if err != nil {
		t.Fatalf("ParseAnswerKey failed: %v", err)
	}

	if len(key) != 3 {
		t.Fatalf("parsed %d entries, want 3", len(key))
	}
	if key[1] != 0 || key[2] != 3 || key[100] != 1 {
		t.Errorf("parsed key %v has wrong values", key)
	}
}

func TestParseAnswerKey_Invalid(t *testing.T) {
	layout := DefaultLayout()

	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `hello`},
		{"not an object", `[1, 2, 3]`},
		{"empty object", `{}`},
		{"non-integer question", `{"abc": 0}`},
		{"question zero", `{"0": 1}`},
		{"question out of range", `{"201": 1}`},
		{"option negative", `{"1": -1}`},
		{"option too large", `{"1": 4}`},
		{"option not an integer", `{"1": "A"}`},
	}

	for _, tc := range cases {
		_, err := ParseAnswerKey([]byte(tc.raw), layout)
		if err == nil {
			t.Errorf("%s: expected an error", tc.name)
			continue
		}
		if !errors.Is(err, ErrConfiguration) {
			t.Errorf("%s: error %v does not wrap ErrConfiguration", tc.name, err)
		}
	}
}
