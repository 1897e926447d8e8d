// Package diagnostic collects the findings of schema validation and content
// import. Each finding carries a code and its document position, plus
// suggested alternatives for undeclared names.
package diagnostic
