package common

// UnknownStr is the String() value of enum values outside their declared range.
const UnknownStr = "unknown"

// DirectivePrefix marks record keys that carry processing instructions instead of data.
const DirectivePrefix = "#"
