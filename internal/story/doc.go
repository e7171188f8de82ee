// Package story loads the static story table: pages, scenes and their timed
// beats, sub-scenes and layer descriptors. Story files are YAML, checked
// against an embedded JSON Schema before decoding; a default story is
// compiled in.
package story
