// Package opencontrol provides the typed model for OpenControl-style
// control-narrative repositories: a root metadata file plus a tree of
// component, standard, and certification YAML files.
//
// Load discovers the repository layout (canonical or the alternate "fen"
// shape), normalizes it, parses it into a Repository, and validates it.
// Save always writes the canonical layout. Fields unknown to the canonical
// schema survive a load/save cycle through the extras bag on each entity.
package opencontrol
