package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const arithmetic = `
Expr   = Term { ( "+" | "-" ) Term } .
Term   = number | "(" Expr ")" .
number = digit { digit } .
digit  = "0" … "9" .
`

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheck(t *testing.T) {
	path := writeFile(t, "expr.ebnf", arithmetic)
	out, _, err := run(t, "", "check", path, "--start", "Expr")
	if err != nil {
		t.Fatalf("check error = %v", err)
	}
	if !strings.Contains(out, "4 productions ok") {
		t.Errorf("output = %q", out)
	}

	bad := writeFile(t, "bad.ebnf", "Expr = Missing | Other .")
	_, stderr, err := run(t, "", "check", bad, "--start", "Expr")
	if err == nil {
		t.Fatal("check of a broken grammar succeeded")
	}
	if !strings.Contains(stderr, "Missing") || !strings.Contains(stderr, "Other") {
		t.Errorf("stderr = %q, want one line per missing production", stderr)
	}
}

func TestParse(t *testing.T) {
	path := writeFile(t, "expr.ebnf", arithmetic)

	for _, mode := range []string{"compiled", "interpreted"} {
		t.Run(mode, func(t *testing.T) {
			out, _, err := run(t, "1 + 2", "parse", path, "-", "--start", "Expr", "--mode", mode)
			if err != nil {
				t.Fatalf("parse error = %v", err)
			}
			want := "Expr @1:1\n  Term @1:1\n    number \"1\" @1:1\n  \"+\" \"+\" @1:3\n  Term @1:5\n    number \"2\" @1:5\n"
			if out != want {
				t.Errorf("output = %q, want %q", out, want)
			}
		})
	}

	_, _, err := run(t, "1 +", "parse", path, "-", "--start", "Expr")
	if err == nil || !strings.Contains(err.Error(), "-:1:4") {
		t.Errorf("parse error = %v, want a syntax error at -:1:4", err)
	}

	if _, _, err := run(t, "1", "parse", path, "-", "--start", "Expr", "--format", "xml"); err == nil {
		t.Error("parse with an unknown format succeeded")
	}
}

func TestTokens(t *testing.T) {
	path := writeFile(t, "expr.ebnf", arithmetic)
	input := writeFile(t, "input.txt", "12 + x")

	out, _, err := run(t, "", "tokens", path, input)
	if err != nil {
		t.Fatalf("tokens error = %v", err)
	}
	want := "1:1\tnumber\t\"12\"\n1:4\t\"+\"\t\"+\"\n1:6\tERROR\t\"x\"\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestPlan(t *testing.T) {
	path := writeFile(t, "expr.ebnf", arithmetic)
	out, _, err := run(t, "", "plan", path, "--start", "Expr")
	if err != nil {
		t.Fatalf("plan error = %v", err)
	}
	for _, want := range []string{"(main)", "func 1 Expr", "= call"} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}
