// Package processor implements the two-phase plugin pipeline that runs
// around every level of a content import.
//
// A record, a field or a field item may carry #preprocess and #postprocess
// directives. Preprocess directives run in declaration order before the level
// is built and may replace the node; postprocess directives run after it is
// built and receive the result. Plugins are created by id from a Registry and
// receive a Context that merges the ambient ImportContext with the directive
// parameters.
package processor
