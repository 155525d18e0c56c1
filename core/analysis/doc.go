// Package analysis defines the scores schema that political-text analysis
// responses are mapped into, and decodes it from extraction results.
//
// Models report a score per framework dimension either as a bare number or
// as an object carrying raw score, salience and confidence:
//
//	{"scores": {"Dignity": 0.9, "Fear": {"raw_score": 0.1, "salience": 0.3, "confidence": 0.8}}}
//
// Both shapes decode into [Score]. The v6 layout that nests scores under
// "dimensional_scores" is accepted as well.
package analysis
