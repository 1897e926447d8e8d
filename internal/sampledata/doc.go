// Package sampledata generates placeholder field values for content
// imports: cycled values from YAML datasets, lorem ipsum text, taxonomy
// terms, placeholder images and copied files.
//
// Datasets are cached by path for the lifetime of a Loader. The cache is
// guarded so several imports may share one Loader.
package sampledata
