// Package record holds the generic record tree content documents are parsed
// into, and the extraction of processor directives embedded in it.
//
// A Node is a scalar, an ordered sequence or an insertion-ordered mapping with
// unique keys. Processors rewrite nodes in place or return replacements, so
// every Node is a mutable pointer value; Clone produces a deep copy.
package record
