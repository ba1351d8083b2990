package rewriter

import "strings"

// preludeMacros are the helper macros every dispatcher declaration is
// allowed to assume exist; cmut doesn't need any beyond the two ABI
// forward declarations themselves today, but the set is kept as its
// own function so a future catalogue addition has somewhere to add
// one without touching BuildPrelude's structure.
func preludeMacros() []string {
	return nil
}

const abiForwardDecls = "bool __dredd_enabled_mutation(int local_mutation_id);\nvoid __dredd_record_covered_mutants(int local_mutation_id);\n"

// BuildPrelude composes the once-per-TU preamble block: the macro set,
// then the two runtime-ABI forward declarations, then
// every distinct dispatcher declaration this TU needed, each separated
// by a blank line for readability.
func BuildPrelude(dispatchers []string) string {
	var parts []string
	parts = append(parts, preludeMacros()...)
	parts = append(parts, abiForwardDecls)
	parts = append(parts, dispatchers...)
	return strings.Join(parts, "\n")
}
