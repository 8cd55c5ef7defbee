// Package webcite turns a captured web resource into a validated,
// deduplicated BibTeX record.
//
// A capture runs through an ordered chain of extraction steps that fill a
// per-capture field store, derives a deterministic citation key, formats the
// record and checks a persisted corpus for duplicates.
//
// This package contains domain types, interfaces and the pure parts of the
// pipeline (field store, key derivation, formatting, BibTeX scanning),
// following Ben Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g., sqlite/,
// goquery/, http/).
package webcite
