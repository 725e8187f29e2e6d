package engine

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/ast"
	"github.com/open-policy-agent/opa/rego"
	"github.com/open-policy-agent/opa/storage"
	"github.com/open-policy-agent/opa/storage/inmem"

	"mercator-hq/themis/pkg/policy/value"
)

// DefaultQuery is the query evaluated when the caller does not configure one.
// It selects the entire data document.
const DefaultQuery = "data"

// CompiledPolicy is a ready-to-query policy artifact. It holds the parsed
// module, the static data store, and prepared queries.
//
// A CompiledPolicy is owned by exactly one goroutine at a time. The prepared
// query cache is mutated on Evaluate, so sharing an instance across
// goroutines is a data race.
type CompiledPolicy struct {
	path     string
	module   *ast.Module
	store    storage.Store
	prepared map[string]rego.PreparedEvalQuery
}

// Compile parses and compiles the Rego module in source under the given
// path, loads the optional static data document (a JSON object, may be
// empty), and eagerly prepares query. Preparing up front means both syntax
// and compile-time errors (unsafe variables, unknown references) surface
// here rather than on the first evaluation.
func Compile(ctx context.Context, path, source, dataJSON, query string) (*CompiledPolicy, error) {
	if query == "" {
		query = DefaultQuery
	}

	module, err := ast.ParseModule(path, source)
	if err != nil {
		return nil, &CompileError{
			Path:    path,
			Message: "parse failed",
			Cause:   err,
		}
	}

	store, err := buildDataStore(path, dataJSON)
	if err != nil {
		return nil, err
	}

	cp := &CompiledPolicy{
		path:     path,
		module:   module,
		store:    store,
		prepared: make(map[string]rego.PreparedEvalQuery, 1),
	}

	if _, err := cp.prepare(ctx, query); err != nil {
		return nil, err
	}

	return cp, nil
}

// Path returns the policy identifier this instance was compiled under.
func (cp *CompiledPolicy) Path() string {
	return cp.path
}

// Evaluate runs query against the compiled policy with input as the input
// document and returns the resulting value. The input document is replaced
// on every call; only one input is in effect at a time.
//
// Repeated calls with different inputs reuse the prepared query and perform
// no recompilation. The compiled rule set is never mutated.
func (cp *CompiledPolicy) Evaluate(ctx context.Context, query string, input value.Value) (value.Value, error) {
	if query == "" {
		query = DefaultQuery
	}

	pq, err := cp.prepare(ctx, query)
	if err != nil {
		return value.Value{}, err
	}

	rs, err := pq.Eval(ctx, rego.EvalInput(input.Interface()))
	if err != nil {
		return value.Value{}, &EvalError{
			Path:  cp.path,
			Query: query,
			Cause: err,
		}
	}

	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return value.Value{}, &EvalError{
			Path:      cp.path,
			Query:     query,
			Undefined: true,
		}
	}

	result, err := value.FromInterface(rs[0].Expressions[0].Value)
	if err != nil {
		return value.Value{}, &EvalError{
			Path:  cp.path,
			Query: query,
			Cause: fmt.Errorf("result conversion: %w", err),
		}
	}

	return result, nil
}

// prepare returns the prepared form of query, building and caching it on
// first use.
func (cp *CompiledPolicy) prepare(ctx context.Context, query string) (rego.PreparedEvalQuery, error) {
	if pq, ok := cp.prepared[query]; ok {
		return pq, nil
	}

	r := rego.New(
		rego.Query(query),
		rego.ParsedModule(cp.module),
		rego.Store(cp.store),
	)

	pq, err := r.PrepareForEval(ctx)
	if err != nil {
		return rego.PreparedEvalQuery{}, &CompileError{
			Path:    cp.path,
			Message: fmt.Sprintf("failed to prepare query %q", query),
			Cause:   err,
		}
	}

	cp.prepared[query] = pq
	return pq, nil
}

// buildDataStore parses the static data document into an in-memory store.
// An empty document yields an empty store.
func buildDataStore(path, dataJSON string) (storage.Store, error) {
	if dataJSON == "" {
		return inmem.New(), nil
	}

	data, err := value.ParseString(dataJSON)
	if err != nil {
		return nil, &CompileError{
			Path:    path,
			Message: "invalid data document",
			Cause:   err,
		}
	}

	obj, ok := data.AsObject()
	if !ok {
		return nil, &CompileError{
			Path:    path,
			Message: fmt.Sprintf("data document must be a JSON object, got %s", data.Kind()),
		}
	}

	native := make(map[string]any, len(obj))
	for k, v := range obj {
		native[k] = v.Interface()
	}

	return inmem.NewFromObject(native), nil
}
