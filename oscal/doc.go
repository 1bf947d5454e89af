// Package oscal provides the elements shared by both OSCAL document kinds:
// document metadata, properties, links, parties, roles, and parameter
// settings, together with the JSON encoding conventions the documents
// share (kebab-case field names, fixed canonical key order, verbatim
// preservation of unknown fields).
package oscal
