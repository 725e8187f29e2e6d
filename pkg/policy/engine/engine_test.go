package engine

import (
	"context"
	"errors"
	"testing"

	"mercator-hq/themis/pkg/policy/value"
)

const testPolicy = `package example

allow := input.role == "admin"

greeting := sprintf("hello, %s", [input.name])
`

func mustParse(t *testing.T, s string) value.Value {
	t.Helper()
	v, err := value.ParseString(s)
	if err != nil {
		t.Fatalf("ParseString(%q) error = %v, want nil", s, err)
	}
	return v
}

func TestCompile(t *testing.T) {
	cp, err := Compile(context.Background(), "example.rego", testPolicy, "", "data.example.allow")
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	if cp.Path() != "example.rego" {
		t.Errorf("Path() = %q, want %q", cp.Path(), "example.rego")
	}
}

func TestCompile_SyntaxError(t *testing.T) {
	_, err := Compile(context.Background(), "broken.rego", "package example\n\nallow :=", "", "data.example.allow")
	if err == nil {
		t.Fatal("Compile() error = nil, want error")
	}

	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("Compile() error type = %T, want *CompileError", err)
	}
	if ce.Path != "broken.rego" {
		t.Errorf("CompileError.Path = %q, want %q", ce.Path, "broken.rego")
	}
}

func TestCompile_UnknownFunction(t *testing.T) {
	// Parses fine, fails at query preparation.
	src := "package example\n\nallow := no_such_builtin(input.x)\n"

	_, err := Compile(context.Background(), "bad.rego", src, "", "data.example.allow")
	if err == nil {
		t.Fatal("Compile() error = nil, want error")
	}

	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("Compile() error type = %T, want *CompileError", err)
	}
}

func TestCompile_InvalidData(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `{"roles": [`},
		{"not an object", `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(context.Background(), "example.rego", testPolicy, tt.data, "")
			if err == nil {
				t.Fatal("Compile() error = nil, want error")
			}
			var ce *CompileError
			if !errors.As(err, &ce) {
				t.Fatalf("Compile() error type = %T, want *CompileError", err)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	ctx := context.Background()
	cp, err := Compile(ctx, "example.rego", testPolicy, "", "data.example.allow")
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"admin allowed", `{"role": "admin"}`, true},
		{"user denied", `{"role": "user"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := cp.Evaluate(ctx, "data.example.allow", mustParse(t, tt.input))
			if err != nil {
				t.Fatalf("Evaluate() error = %v, want nil", err)
			}
			got, ok := result.AsBool()
			if !ok {
				t.Fatalf("result kind = %v, want bool", result.Kind())
			}
			if got != tt.want {
				t.Errorf("Evaluate(%s) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestEvaluate_SecondQueryPreparedLazily(t *testing.T) {
	ctx := context.Background()
	cp, err := Compile(ctx, "example.rego", testPolicy, "", "data.example.allow")
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	result, err := cp.Evaluate(ctx, "data.example.greeting", mustParse(t, `{"name": "ada"}`))
	if err != nil {
		t.Fatalf("Evaluate() error = %v, want nil", err)
	}

	if s, _ := result.AsString(); s != "hello, ada" {
		t.Errorf("greeting = %q, want %q", s, "hello, ada")
	}
}

func TestEvaluate_StaticData(t *testing.T) {
	src := `package example

allowed := count([a | a := data.admins[_]; a == input.user]) > 0
`
	ctx := context.Background()
	cp, err := Compile(ctx, "example.rego", src, `{"admins": ["alice", "bob"]}`, "data.example.allowed")
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	result, err := cp.Evaluate(ctx, "data.example.allowed", mustParse(t, `{"user": "alice"}`))
	if err != nil {
		t.Fatalf("Evaluate() error = %v, want nil", err)
	}
	if got, _ := result.AsBool(); !got {
		t.Error("alice not allowed, want allowed")
	}

	result, err = cp.Evaluate(ctx, "data.example.allowed", mustParse(t, `{"user": "mallory"}`))
	if err != nil {
		t.Fatalf("Evaluate() error = %v, want nil", err)
	}
	if got, _ := result.AsBool(); got {
		t.Error("mallory allowed, want denied")
	}
}

func TestEvaluate_Undefined(t *testing.T) {
	src := `package example

allow {
	input.role == "admin"
}
`
	ctx := context.Background()
	cp, err := Compile(ctx, "example.rego", src, "", "data.example.allow")
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	_, err = cp.Evaluate(ctx, "data.example.allow", mustParse(t, `{"role": "user"}`))
	if err == nil {
		t.Fatal("Evaluate() error = nil, want undefined error")
	}

	var ee *EvalError
	if !errors.As(err, &ee) {
		t.Fatalf("Evaluate() error type = %T, want *EvalError", err)
	}
	if !ee.Undefined {
		t.Errorf("EvalError.Undefined = false, want true: %v", err)
	}
}

func TestEvaluate_RuntimeError(t *testing.T) {
	src := `package example

result := 1 / input.divisor
`
	ctx := context.Background()
	cp, err := Compile(ctx, "example.rego", src, "", "data.example.result")
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	_, err = cp.Evaluate(ctx, "data.example.result", mustParse(t, `{"divisor": 0}`))
	if err == nil {
		t.Fatal("Evaluate() error = nil, want divide by zero error")
	}

	var ee *EvalError
	if !errors.As(err, &ee) {
		t.Fatalf("Evaluate() error type = %T, want *EvalError", err)
	}
	if ee.Undefined {
		t.Error("EvalError.Undefined = true, want false for runtime error")
	}
}

func TestEvaluate_DefaultQuery(t *testing.T) {
	src := `package example

answer := 42
`
	ctx := context.Background()
	cp, err := Compile(ctx, "example.rego", src, "", "")
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	result, err := cp.Evaluate(ctx, "", mustParse(t, `{}`))
	if err != nil {
		t.Fatalf("Evaluate() error = %v, want nil", err)
	}

	obj, ok := result.AsObject()
	if !ok {
		t.Fatalf("result kind = %v, want object", result.Kind())
	}
	example, ok := obj["example"].AsObject()
	if !ok {
		t.Fatalf("data.example missing from result %v", result)
	}
	if answer, _ := example["answer"].AsInt(); answer != 42 {
		t.Errorf("data.example.answer = %d, want 42", answer)
	}
}

func TestEvaluate_NumberFidelity(t *testing.T) {
	src := `package example

echo := input.n
`
	ctx := context.Background()
	cp, err := Compile(ctx, "example.rego", src, "", "data.example.echo")
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	result, err := cp.Evaluate(ctx, "data.example.echo", mustParse(t, `{"n": 9007199254740993}`))
	if err != nil {
		t.Fatalf("Evaluate() error = %v, want nil", err)
	}
	if got := result.String(); got != "9007199254740993" {
		t.Errorf("echoed integer = %s, want 9007199254740993", got)
	}
}
