// Package tokenizer provides byte-level BPE tokenizers.
//
// Three kinds of tokenizer share one implementation, BPETokenizer:
//   - basic: BPE over the raw bytes of the whole text (NewBasicTokenizer)
//   - regex: text is first split into chunks by a pattern such as
//     pretokenize.GPT4Pattern, and merges never cross chunk boundaries
//     (NewRegexTokenizer)
//   - compat: merges recovered from a published rank table such as
//     cl100k_base, reproducing that tokenizer's output exactly
//     (NewCompatTokenizer, NewEncodingTokenizer, NewGPT4Tokenizer)
//
// Basic and regex tokenizers can be trained and saved; compat tokenizers
// report ErrNotSupported for Train, Save and Load. Capabilities tells which
// operations a tokenizer supports.
//
// Special tokens are atomic strings with reserved ids. Whether they are
// recognized in input text is chosen per call with a special.Policy.
//
// Example usage:
//
//	// Train a tokenizer
//	tok, err := tokenizer.NewRegexTokenizer(pretokenize.GPT4Pattern, tokenizer.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := tok.Train(text, 512, true); err != nil {
//	    log.Fatal(err)
//	}
//	if err := tok.RegisterSpecialTokens(map[string]int{"<|endoftext|>": 512}); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Encode text
//	ids, err := tok.Encode("hello world<|endoftext|>", special.AllowAll)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Decode tokens
//	text, err := tok.Decode(ids)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Save and load
//	if err := tok.Save("models/regex"); err != nil {
//	    log.Fatal(err)
//	}
//	tok, err = tokenizer.Load("models/regex.model", tokenizer.DefaultConfig())
package tokenizer
