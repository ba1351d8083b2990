package astfront

import (
	"strings"
	"testing"
)

// sample mirrors the shape a real `clang -ast-dump=json` run produces
// for `void foo() { -2; }`, trimmed to the fields this package reads.
const sample = `{
  "id": "0x1", "kind": "TranslationUnitDecl",
  "inner": [
    {
      "id": "0x2", "kind": "FunctionDecl", "name": "foo",
      "loc": {"file": "foo.cc", "line": 1, "col": 6},
      "inner": [
        {
          "id": "0x3", "kind": "CompoundStmt",
          "range": {
            "begin": {"line": 1, "col": 12},
            "end": {"line": 1, "col": 19}
          },
          "inner": [
            {
              "id": "0x4", "kind": "UnaryOperator", "opcode": "-",
              "valueCategory": "prvalue",
              "type": {"qualType": "int"},
              "range": {
                "begin": {"col": 14},
                "end": {"col": 15}
              },
              "inner": [
                {
                  "id": "0x5", "kind": "IntegerLiteral", "value": "2",
                  "valueCategory": "prvalue",
                  "type": {"qualType": "int"},
                  "range": {"begin": {"col": 15}, "end": {"col": 15}}
                }
              ]
            }
          ]
        }
      ]
    }
  ]
}`

func TestParseFillsElidedFileAndLine(t *testing.T) {
	root, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	fn := root.Inner[0]
	compound := fn.Inner[0]
	unary := compound.Inner[0]
	lit := unary.Inner[0]

	if unary.Range.SpellingBegin.File != "foo.cc" {
		t.Errorf("unary file = %q, want carried-over foo.cc", unary.Range.SpellingBegin.File)
	}
	if unary.Range.SpellingBegin.Line != 1 {
		t.Errorf("unary line = %d, want carried-over 1", unary.Range.SpellingBegin.Line)
	}
	if unary.Range.SpellingBegin.Column != 14 {
		t.Errorf("unary col = %d, want 14", unary.Range.SpellingBegin.Column)
	}
	if lit.Parent() != unary {
		t.Errorf("literal's parent not linked to unary operator")
	}
	if unary.Parent() != compound {
		t.Errorf("unary's parent not linked to compound statement")
	}
}

func TestIsCompileTimeConstant(t *testing.T) {
	root, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	unary := root.Inner[0].Inner[0].Inner[0]
	if !unary.IsCompileTimeConstant() {
		t.Errorf("-2 should be a compile-time constant")
	}
}
