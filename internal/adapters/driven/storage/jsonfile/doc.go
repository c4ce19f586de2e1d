// Package jsonfile persists pipeline artifacts as plain JSON files under
// the data directory: per-document extraction results and normalised
// records, per-run summary reports, and the processed-file registry.
//
// Each artifact is one file holding one object, so any of them can be
// inspected or removed independently of the rest. The registry is small
// and rewritten whole on every save.
package jsonfile
