package playerjs

import "testing"

const syntheticPlayerJS = `var yGa=function(a){a=a.split("");a.reverse();return a.join("")};
(function(g){var window=this;
g.xy=function(b,c){var d=c.get("n");if(d&&(b=yGa(b)))return b;return b};
})(_yt_player);`

const syntheticPlayerJSSplice = `function qZr(a){a=a.split("");a.splice(0,2);return a.join("")}
(function(g){var window=this;
g.ab=function(b,c){var d=c.get("n");if(d&&(b=qZr(b)))return b;return b};
})(_yt_player);`

func TestTransformReversesValue(t *testing.T) {
	tr := NewNTransformer(syntheticPlayerJS)
	got, err := tr.Transform("12345")
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if got != "54321" {
		t.Fatalf("Transform() = %q, want %q", got, "54321")
	}
}

func TestTransformFunctionDeclarationForm(t *testing.T) {
	tr := NewNTransformer(syntheticPlayerJSSplice)
	got, err := tr.Transform("12345")
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if got != "345" {
		t.Fatalf("Transform() = %q, want %q", got, "345")
	}
}

func TestTransformFailsWithoutChallenge(t *testing.T) {
	tr := NewNTransformer(`var unrelated=function(a){return a};`)
	if _, err := tr.Transform("12345"); err == nil {
		t.Fatalf("expected error for player js without n challenge")
	}
}

func TestExtractFunctionBalancesStrings(t *testing.T) {
	js := `var fn=function(a){var s="}";return a+s};`
	tr := NewNTransformer(js)
	body, err := tr.extractFunction("fn")
	if err != nil {
		t.Fatalf("extractFunction() error = %v", err)
	}
	want := `fn=function(a){var s="}";return a+s}`
	if body != want {
		t.Fatalf("extractFunction() = %q, want %q", body, want)
	}
}
