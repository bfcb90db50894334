package main

import "testing"

func TestParseFormats(t *testing.T) {
	cases := map[string]int{"": 2, "both": 2, "JSON": 1, " csv ": 1}
	for in, want := range cases {
		got, err := parseFormats(in)
		if err != nil {
			t.Fatalf("parseFormats(%q): %v", in, err)
		}
		if len(got) != want {
			t.Fatalf("parseFormats(%q): want=%d got=%v", in, want, got)
		}
	}
	if _, err := parseFormats("xml"); err == nil {
		t.Fatalf("parseFormats(xml): want error")
	}
}
