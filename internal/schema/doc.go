// Package schema describes the content types records are imported into.
//
// A TypeSchema lists the structural key aliases of a type (identity and
// subtype selectors) and its field definitions with their cardinality,
// reference target and scalar kind. Schemas are loaded from a YAML file
// (see Parse) or discovered from annotated Go structs (see package analyze),
// validated, and served read-only through a Registry.
//
// YAML format:
//
//	version: "1"
//	types:
//	  - name: node
//	    label: Content
//	    keys:
//	      bundle: type     # source key: target property
//	    unique: title      # principal identifier, salted when not checking existence
//	    fields:
//	      - name: title
//	        kind: string
//	      - name: tags
//	        cardinality: unlimited
//	        reference: true
//	        target: taxonomy_term
//	  - name: paragraph
//	    reusable: false    # owned component, never matched by existence checks
package schema
