// Package special manages atomic special tokens.
//
// A special token is a reserved string with a fixed id. It is never produced
// by merges and never split: encoding cuts the input around special strings
// (subject to a Policy) before ordinary BPE runs on the pieces in between.
//
// Example usage:
//
//	reg, err := special.FromMap(map[string]int{"<|endoftext|>": 100257})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	segments, err := reg.Split("hi<|endoftext|>", special.AllowAll)
//	if err != nil {
//	    log.Fatal(err)
//	}
package special
