// Package engine wraps the Open Policy Agent Rego runtime behind a small
// compile/evaluate capability.
//
// The package exposes two operations:
//
//  1. Compile - parse and compile a Rego module, load optional static data,
//     and prepare the configured query for repeated evaluation
//  2. CompiledPolicy.Evaluate - run a query against the compiled policy with
//     a fresh input document
//
// A CompiledPolicy is an opaque, single-owner artifact: it caches prepared
// queries lazily and therefore must not be shared across goroutines. Callers
// that need concurrent evaluation compile one policy per worker (see the
// evaluator package) rather than synchronizing access to one instance.
//
// Compilation is deterministic: the same (path, source, data) triple always
// produces a policy with identical query-answering behavior.
//
// # Basic Usage
//
//	compiled, err := engine.Compile(ctx, "authz.rego", source, "", "data.authz.allow")
//	if err != nil {
//	    return err
//	}
//
//	input, _ := value.ParseString(`{"role": "admin"}`)
//	result, err := compiled.Evaluate(ctx, "data.authz.allow", input)
//
// Errors wrap the underlying OPA diagnostic verbatim together with the policy
// path and query so failures are diagnosable at the call site.
package engine
