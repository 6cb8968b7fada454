package routerconfig

import (
	"reflect"
	"testing"
)

func TestSplitArgsSimple(t *testing.T) {
	got := SplitArgs("1, 2, 3")
	want := []string{"1", "2", "3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitArgs = %v, want %v", got, want)
	}
}

func TestSplitArgsNestedParens(t *testing.T) {
	got := SplitArgs("a, (b, c), d")
	want := []string{"a", "(b, c)", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitArgs = %v, want %v", got, want)
	}
}

func TestSplitArgsQuotedComma(t *testing.T) {
	got := SplitArgs(`"a, b", c`)
	want := []string{`"a, b"`, "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitArgs = %v, want %v", got, want)
	}
}

func TestSplitArgsEmpty(t *testing.T) {
	got := SplitArgs("")
	if got != nil {
		t.Fatalf("SplitArgs(\"\") = %v, want nil", got)
	}
}

func TestParseKeywordsPositionalAndKeyword(t *testing.T) {
	var present bool
	var value string
	specs := []KeywordSpec{
		{Name: "BURST", Present: &present, Value: &value},
	}
	positional, leftover, err := ParseKeywords([]string{"3", "BURST", "10"}, specs, false)
	if err != nil {
		t.Fatalf("ParseKeywords error = %v", err)
	}
	if len(leftover) != 0 {
		t.Fatalf("leftover = %v, want empty", leftover)
	}
	if len(positional) != 1 || positional[0] != "3" {
		t.Fatalf("positional = %v", positional)
	}
	if !present || value != "10" {
		t.Fatalf("present=%v value=%q", present, value)
	}
}

func TestParseKeywordsMandatoryMissing(t *testing.T) {
	var present bool
	specs := []KeywordSpec{
		{Name: "CAPACITY", Mandatory: true, Present: &present},
	}
	_, _, err := ParseKeywords([]string{"3"}, specs, false)
	if err == nil {
		t.Fatal("expected an error for a missing mandatory keyword")
	}
}

func TestParseKeywordsUnknownErrors(t *testing.T) {
	var present bool
	specs := []KeywordSpec{{Name: "BURST", Present: &present}}
	// BOGUS appears after a recognized keyword has already been seen,
	// so it can no longer be read as a plain positional argument.
	_, _, err := ParseKeywords([]string{"3", "BURST", "10", "BOGUS", "1"}, specs, false)
	if err == nil {
		t.Fatal("expected an error for an unknown keyword")
	}
}

func TestParseKeywordsIgnoreRest(t *testing.T) {
	var present bool
	specs := []KeywordSpec{{Name: "BURST", Present: &present}}
	positional, leftover, err := ParseKeywords([]string{"3", "BURST", "10", "BOGUS", "1"}, specs, true)
	if err != nil {
		t.Fatalf("ParseKeywords error = %v", err)
	}
	if len(positional) != 1 || positional[0] != "3" {
		t.Fatalf("positional = %v", positional)
	}
	if !reflect.DeepEqual(leftover, []string{"BOGUS", "1"}) {
		t.Fatalf("leftover = %v", leftover)
	}
}

func TestParseStringDoubleQuoted(t *testing.T) {
	got, status := ParseString(`"a\nb"`)
	if status != StatusOK || got != "a\nb" {
		t.Fatalf("ParseString = %q, %v", got, status)
	}
}

func TestParseStringSingleQuotedRaw(t *testing.T) {
	got, status := ParseString(`'a\nb'`)
	if status != StatusOK || got != `a\nb` {
		t.Fatalf("ParseString = %q, %v", got, status)
	}
}

func TestParseStringBareWord(t *testing.T) {
	got, status := ParseString("bareword")
	if status != StatusOK || got != "bareword" {
		t.Fatalf("ParseString = %q, %v", got, status)
	}
}
