// Package serialization reads and writes trained tokenizer models.
//
// A model is stored as a line-oriented text file (conventionally
// <prefix>.model):
//
//	minbpe v1.0
//	<split pattern>
//	<number of special tokens>
//	<special token> <id>          (repeated)
//	<number of merges>
//	<left id> <right id>          (repeated, in learned order)
//
// Merge ids are not stored; the rule on row i (0-based) produces id 256+i.
// Next to it, SaveVocab writes a human-readable listing of every token
// (<prefix>.vocab) that is never read back.
//
// Files are written to a temporary name in the target directory and renamed
// into place, so a failed save never leaves a truncated model behind.
//
// Example usage:
//
//	// Save a model
//	m := &serialization.Model{Pattern: pattern, Specials: specials, Merges: merges}
//	if err := serialization.SaveModel("out/tok.model", m); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Load a model
//	m, err := serialization.LoadModel("out/tok.model")
//	if err != nil {
//	    log.Fatal(err)
//	}
package serialization
