// Package extract locates and parses the JSON payload embedded in raw LLM
// output. Models wrap their structured answers in project-specific sentinel
// markers, markdown code fences, or nothing at all, and they regularly emit
// near-miss JSON (trailing commas, single quotes, objects cut off by a token
// limit). The [Extractor] walks a fixed ladder of candidate strategies and
// parsers and records every failed rung as an [Attempt], so callers get a
// complete [Result] back instead of an error.
//
// Candidate strategies, first match wins:
//
//  1. explicit sentinel markers such as <<<ANALYSIS_JSON_v6>>> ... <<<END_ANALYSIS_JSON_v6>>>
//  2. a markdown fenced code block
//  3. the bare response text
//
// The candidate is then parsed strictly with encoding/json and, if that fails,
// repaired with jsonrepair and parsed again.
//
// Extraction is a pure function of its input: no I/O, no logging, no shared
// mutable state. One [Extractor] may serve any number of goroutines.
package extract
