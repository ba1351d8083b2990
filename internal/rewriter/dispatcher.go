package rewriter

import (
	"fmt"
	"strings"
)

// dispatcherSpec is one deduplicated dispatcher function. Identically-
// named sites must share a single declaration, which in practice means
// identical (kind, operator, type, shape) sites always synthesise
// byte-identical bodies; dispatcherRegistry below enforces the
// "declared once" half of that rule.
type dispatcherSpec struct {
	name       string
	templated  bool // true for the Arg-templated ReplaceExpr/Unary form
	returnType string
	paramTypes []string // plain (non-templated) parameter types, Binary only
	variants   []string // fully rendered candidate expressions, in order
	fallback   string
}

func (d dispatcherSpec) declaration() string {
	var b strings.Builder
	if d.templated {
		fmt.Fprintf(&b, "template <typename Arg>\nstatic %s %s(Arg arg, int local_mutation_id) {\n", d.returnType, d.name)
	} else {
		params := make([]string, len(d.paramTypes))
		names := []string{"lhs", "rhs"}
		for i, t := range d.paramTypes {
			params[i] = fmt.Sprintf("%s %s", t, names[i])
		}
		fmt.Fprintf(&b, "static %s %s(%s, int local_mutation_id) {\n", d.returnType, d.name, strings.Join(params, ", "))
	}
	for i, v := range d.variants {
		fmt.Fprintf(&b, "  if (__dredd_enabled_mutation(local_mutation_id + %d)) { return %s; }\n", i, v)
	}
	fmt.Fprintf(&b, "  return %s;\n}\n", d.fallback)
	return b.String()
}

// dispatcherRegistry tracks which dispatcher names have already had
// their declaration emitted in this TU's prelude.
type dispatcherRegistry struct {
	seen  map[string]bool
	order []string
}

func newDispatcherRegistry() *dispatcherRegistry {
	return &dispatcherRegistry{seen: map[string]bool{}}
}

// declare registers spec's declaration under its name the first time
// it's seen; later calls with an already-registered name do nothing.
func (r *dispatcherRegistry) declare(spec dispatcherSpec) {
	if r.seen[spec.name] {
		return
	}
	r.seen[spec.name] = true
	r.order = append(r.order, spec.declaration())
}

func (r *dispatcherRegistry) declarations() []string {
	return r.order
}
