package validator

import (
	"strings"
	"testing"

	"github.com/nextlevelbuilder/pyrunner/internal/policy"
)

func TestValidate_AdmitsSimplePrint(t *testing.T) {
	if err := Validate(`print("Hello, PyRunner!")`, policy.Default()); err != nil {
		t.Fatalf("want admit, got %v", err)
	}
}

func TestValidate_AdmitsPermittedImport(t *testing.T) {
	src := "import math\nprint(math.sqrt(16))\n"
	if err := Validate(src, policy.Default()); err != nil {
		t.Fatalf("want admit, got %v", err)
	}
}

func TestValidate_RejectsForbiddenImport(t *testing.T) {
	src := "import os\nprint(os.getcwd())\n"
	err := Validate(src, policy.Default())
	if err == nil {
		t.Fatalf("want rejection")
	}
	if !strings.Contains(err.Error(), "os") {
		t.Fatalf("want reason to name os, got %v", err)
	}
}

func TestValidate_AdmitsInfiniteLoop(t *testing.T) {
	// admitted at the validator level; the dynamic layer is what would
	// eventually stop an infinite loop.
	if err := Validate("while True:\n    pass\n", policy.Default()); err != nil {
		t.Fatalf("want admit, got %v", err)
	}
}

func TestValidate_RejectsForbiddenBuiltin(t *testing.T) {
	err := Validate(`eval("1+1")`, policy.Default())
	if err == nil {
		t.Fatalf("want rejection")
	}
	if !strings.Contains(err.Error(), "eval") {
		t.Fatalf("want reason to name eval, got %v", err)
	}
}

func TestValidate_AdmitsDivisionExpression(t *testing.T) {
	if err := Validate("print(1/0)", policy.Default()); err != nil {
		t.Fatalf("want admit (the division error is a runtime concern), got %v", err)
	}
}

func TestValidate_RejectsDottedImportOnForbiddenHead(t *testing.T) {
	cat, err := policy.New([]string{"forbidden_pkg"}, []string{"math"}, nil, nil)
	if err != nil {
		t.Fatalf("policy.New: %v", err)
	}
	err = Validate("import forbidden_pkg.sub\n", cat)
	if err == nil || !strings.Contains(err.Error(), "forbidden_pkg") {
		t.Fatalf("want rejection naming forbidden_pkg, got %v", err)
	}
}

func TestValidate_RejectsFromImportOfForbiddenModule(t *testing.T) {
	err := Validate("from socket import socket\n", policy.Default())
	if err == nil {
		t.Fatalf("want rejection")
	}
}

func TestValidate_AdmitsUnderscorePrefixedImport(t *testing.T) {
	if err := Validate("import _weakref\n", policy.Default()); err != nil {
		t.Fatalf("want admit per the underscore escape hatch, got %v", err)
	}
}

func TestValidate_RejectsForbiddenAttribute(t *testing.T) {
	err := Validate("x = obj.__globals__\n", policy.Default())
	if err == nil || !strings.Contains(err.Error(), "__globals__") {
		t.Fatalf("want rejection naming __globals__, got %v", err)
	}
}

func TestValidate_RejectsDynamicAttrTrioCalls(t *testing.T) {
	for _, name := range []string{"getattr", "setattr", "delattr"} {
		err := Validate(name+"(obj, 'x')", policy.Default())
		if err == nil {
			t.Fatalf("%s: want rejection", name)
		}
	}
}

func TestValidate_RejectsSyntaxError(t *testing.T) {
	err := Validate("def f(:\n", policy.Default())
	if err == nil {
		t.Fatalf("want rejection")
	}
	if !strings.HasPrefix(err.Error(), "syntax error:") {
		t.Fatalf("want syntax error prefix, got %v", err)
	}
}

func TestValidate_WalksNestedScopes(t *testing.T) {
	src := "def f():\n    import os\n    return os.getcwd()\n"
	err := Validate(src, policy.Default())
	if err == nil || !strings.Contains(err.Error(), "os") {
		t.Fatalf("want nested import caught, got %v", err)
	}
}

func TestValidate_WalksComprehensions(t *testing.T) {
	src := "xs = [eval(s) for s in lines]\n"
	err := Validate(src, policy.Default())
	if err == nil || !strings.Contains(err.Error(), "eval") {
		t.Fatalf("want eval caught inside comprehension, got %v", err)
	}
}

func TestValidate_RoundTripPermittedOnly(t *testing.T) {
	cat := policy.Default()
	src := "import math\nimport statistics\nx = math.pi\ny = statistics.mean([1, 2, 3])\nprint(x, y)\n"
	if err := Validate(src, cat); err != nil {
		t.Fatalf("want admit for an all-permitted program, got %v", err)
	}
}

func TestValidate_RejectsForbiddenCallInsideFString(t *testing.T) {
	cases := []string{
		`x = f"{__import__('os').system('id')}"`,
		`y = f"{eval('1+1')}"`,
	}
	for _, src := range cases {
		err := Validate(src, policy.Default())
		if err == nil {
			t.Fatalf("%s: want rejection, got admit", src)
		}
	}
}

func TestValidate_AdmitsFStringWithPermittedExpression(t *testing.T) {
	src := "import math\nname = 'pi'\nprint(f\"{name} is {math.pi:.2f}\")\n"
	if err := Validate(src, policy.Default()); err != nil {
		t.Fatalf("want admit, got %v", err)
	}
}

func TestValidate_RejectsForbiddenAttributeInsideFString(t *testing.T) {
	err := Validate("x = f\"{obj.__globals__}\"", policy.Default())
	if err == nil || !strings.Contains(err.Error(), "__globals__") {
		t.Fatalf("want rejection naming __globals__, got %v", err)
	}
}
