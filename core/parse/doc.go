// Package parse converts extracted model output into typed Go values.
//
// [ParseResultAs] decodes the value held by an [extract.Result] into T.
// [ParseStringAs] runs the whole pipeline on raw text: primitives are
// converted directly, everything else goes through [extract.Extract] first
// so that sentinel markers, code fences and near-miss JSON are handled
// before decoding. When a decode fails because the model echoed JSON-schema
// style {"type": ..., "value": ...} wrappers instead of plain values, the
// wrappers are removed and the decode is retried.
package parse
