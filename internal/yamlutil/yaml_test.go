package yamlutil

// Notes:
// - The Marshal error branch is not covered: the library only fails on
//   channels and funcs, which no config struct holds.

import (
	"errors"
	"strings"
	"testing"
)

type mathSection struct {
	Renderer string `yaml:"renderer"`
	DPI      int    `yaml:"dpi"`
	Curly    bool   `yaml:"curly"`
}

type document struct {
	Math  mathSection       `yaml:"math"`
	Style string            `yaml:"style,omitempty"`
	Extra map[string]string `yaml:"symbols,omitempty"`
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    document
		wantErr error
		errHas  string
	}{
		{
			name:  "nested section",
			input: "math:\n  renderer: fetch\n  dpi: 300\n  curly: true\n",
			want:  document{Math: mathSection{Renderer: "fetch", DPI: 300, Curly: true}},
		},
		{
			name:  "map field",
			input: "symbols:\n  \\R: ℝ\n",
			want:  document{Extra: map[string]string{`\R`: "ℝ"}},
		},
		{
			name:  "comments only leaves zero value",
			input: "# nothing configured\n",
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: ErrEmptyInput,
		},
		{
			name:   "unknown key",
			input:  "math:\n  renderer: webtex\n  colour: red\n",
			errHas: "colour",
		},
		{
			name:   "wrong type",
			input:  "math:\n  dpi: high\n",
			errHas: "dpi",
		},
		{
			name:   "syntax error",
			input:  "math: [unclosed\n",
			errHas: "yamlutil:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got document
			err := UnmarshalStrict([]byte(tt.input), &got)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("UnmarshalStrict() error = %v, want %v", err, tt.wantErr)
				}
			case tt.errHas != "":
				var yerr *Error
				if !errors.As(err, &yerr) {
					t.Fatalf("UnmarshalStrict() error = %v (%T), want *Error", err, err)
				}
				if !strings.Contains(err.Error(), tt.errHas) {
					t.Errorf("error = %q, want it to contain %q", err, tt.errHas)
				}
				if errors.Unwrap(err) == nil {
					t.Error("Unwrap() = nil, want the library error")
				}
			default:
				if err != nil {
					t.Fatalf("UnmarshalStrict() error = %v", err)
				}
				if got.Math != tt.want.Math || got.Style != tt.want.Style || len(got.Extra) != len(tt.want.Extra) {
					t.Errorf("UnmarshalStrict() = %+v, want %+v", got, tt.want)
				}
				for k, v := range tt.want.Extra {
					if got.Extra[k] != v {
						t.Errorf("Extra[%q] = %q, want %q", k, got.Extra[k], v)
					}
				}
			}
		})
	}
}

func TestUnmarshalStrict_NilTarget(t *testing.T) {
	t.Parallel()

	if err := UnmarshalStrict([]byte("style: x"), nil); !errors.Is(err, ErrNilTarget) {
		t.Errorf("UnmarshalStrict(nil) error = %v, want ErrNilTarget", err)
	}
}

func TestDecode_SizeLimit(t *testing.T) {
	t.Parallel()

	atLimit := []byte("style: " + strings.Repeat("a", 13))
	var d document
	if err := decode(atLimit, &d, len(atLimit)); err != nil {
		t.Errorf("decode() at limit error = %v", err)
	}

	err := decode(atLimit, &d, len(atLimit)-1)
	if !errors.Is(err, ErrInputTooLarge) {
		t.Fatalf("decode() over limit error = %v, want ErrInputTooLarge", err)
	}
	if !strings.Contains(err.Error(), "20 bytes (max 19)") {
		t.Errorf("error = %q, want sizes in message", err)
	}
}

// ---------------------------------------------------------------------------
// TestMarshal
// ---------------------------------------------------------------------------

func TestMarshal(t *testing.T) {
	t.Parallel()

	in := document{Math: mathSection{Renderer: "browser", DPI: 200}}
	out, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	text := string(out)
	for _, want := range []string{"math:\n", "  renderer: browser\n", "  dpi: 200\n"} {
		if !strings.Contains(text, want) {
			t.Errorf("Marshal() = %q, want it to contain %q", text, want)
		}
	}
	if strings.Contains(text, "style:") {
		t.Errorf("Marshal() = %q, omitempty field should be absent", text)
	}

	var back document
	if err := UnmarshalStrict(out, &back); err != nil || back.Math != in.Math {
		t.Errorf("round trip = %+v, %v; want %+v", back, err, in)
	}
}
