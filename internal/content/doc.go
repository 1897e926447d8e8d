// Package content imports YAML content documents into a storage.Repository.
//
// A document is a sequence of records. Each record names its target type
// under the type key ("entity" by default); the remaining keys are either
// structural keys declared by the type's key aliases or field data. Field
// values that are mappings carrying the type key are built as nested objects
// and stored as references.
//
// The import is depth first: a record's fields are populated in declaration
// order, nested records are finished before their parent, and processor
// directives run around every record, field and field item. Field level
// failures are reported in the result diagnostics and do not stop the
// import; structural failures abort it.
package content
