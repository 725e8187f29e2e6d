// Package value implements the JSON-like value model shared by policy data,
// evaluation input, and evaluation results.
//
// A Value is a discriminated union over the JSON shapes: null, boolean,
// number, string, array, and object. Numbers preserve the integer versus
// floating-point distinction of their source representation: an integer that
// is exactly representable round-trips exactly, which matters for policy
// inputs carrying identifiers or counters.
//
// Values convert losslessly in three directions:
//
//   - Parse turns JSON text into a Value
//   - Value.String and Value.MarshalJSON turn a Value back into JSON text
//   - Value.Interface turns a Value into native Go types (nil, bool, int64,
//     float64, string, []any, map[string]any) for hosts that want to work
//     with the result directly
package value
