package routerconfig

import "testing"

func TestTokenizeBasicGraph(t *testing.T) {
	src := `src :: Source -> Queue -> sink :: Sink;`
	toks, err := Tokenize([]byte(src), "test")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	wantKinds := []TokenKind{
		TokIdent, TokColonColon, TokIdent, TokArrow, TokIdent, TokArrow,
		TokIdent, TokColonColon, TokIdent, TokSemicolon,
	}
	if len(toks) != len(wantKinds) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(wantKinds), toks)
	}
	for i, k := range wantKinds {
		if toks[i].Kind != k {
			t.Errorf("token %d: kind = %v, want %v", i, toks[i].Kind, k)
		}
	}
}

func TestTokenizeConfigSpan(t *testing.T) {
	src := `Print("hello, world")`
	toks, err := Tokenize([]byte(src), "test")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	if len(toks) != 2 {
		t.Fatalf("got %d tokens, want 2: %v", len(toks), toks)
	}
	if toks[1].Kind != TokConfig {
		t.Fatalf("second token kind = %v, want TokConfig", toks[1].Kind)
	}
	if toks[1].Text != `"hello, world"` {
		t.Fatalf("config text = %q, want %q", toks[1].Text, `"hello, world"`)
	}
}

func TestTokenizeConfigNestedParens(t *testing.T) {
	src := `Foo(a, (b, c), d)`
	toks, err := Tokenize([]byte(src), "test")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	if toks[1].Text != "a, (b, c), d" {
		t.Fatalf("config text = %q", toks[1].Text)
	}
}

func TestTokenizeLineComment(t *testing.T) {
	src := "src // a trailing note\n-> Sink"
	toks, err := Tokenize([]byte(src), "test")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	if len(toks) != 3 {
		t.Fatalf("got %d tokens, want 3: %v", len(toks), toks)
	}
}

func TestTokenizeBlockComment(t *testing.T) {
	src := "src /* note\nspanning lines */ -> Sink"
	toks, err := Tokenize([]byte(src), "test")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	if len(toks) != 3 {
		t.Fatalf("got %d tokens, want 3: %v", len(toks), toks)
	}
}

func TestTokenizeQuotedStringEscapes(t *testing.T) {
	src := `"a\nb\tc\x41"`
	toks, err := Tokenize([]byte(src), "test")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	if toks[0].Text != "a\nb\tcA" {
		t.Fatalf("Text = %q", toks[0].Text)
	}
}

func TestTokenizeRawSingleQuoted(t *testing.T) {
	src := `'a\nb'`
	toks, err := Tokenize([]byte(src), "test")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	if toks[0].Text != `a\nb` {
		t.Fatalf("Text = %q, want literal backslash-n", toks[0].Text)
	}
}

func TestTokenizeUnterminatedConfigErrors(t *testing.T) {
	_, err := Tokenize([]byte(`Foo(abc`), "test")
	if err == nil {
		t.Fatal("expected an error for an unterminated configuration span")
	}
}

func TestTokenizeUnterminatedStringErrors(t *testing.T) {
	_, err := Tokenize([]byte(`"abc`), "test")
	if err == nil {
		t.Fatal("expected an error for an unterminated string")
	}
}

func TestTokenLandmark(t *testing.T) {
	tok := Token{File: "router.click", Line: 7}
	if got, want := tok.Landmark(), "router.click:7"; got != want {
		t.Fatalf("Landmark() = %q, want %q", got, want)
	}
}
