// Package metadata loads the default metadata registry: the read-only set of
// documents (page templates, component defaults, example services) that the
// rest of the system looks up by ID.
//
// # Sources
//
// A [Source] produces raw documents. Two are provided:
//
//   - [DirSource]: every file one level below the subdirectories of a
//     directory, i.e. <dir>/*/*, decoded by extension (.json, .yaml, .yml,
//     .toml; anything else is read as JSON)
//   - [MongoSource]: every document of a MongoDB collection
//
// # Registry
//
// [Load] reads a source once and returns an immutable [Registry] keyed by
// each document's "_id" field. A document without a string "_id", two
// documents sharing an ID, or a file that fails to parse aborts the load with
// a METADATA_LOAD error; a half-loaded registry is never returned.
//
//	reg, err := metadata.Load(ctx, metadata.DirSource{Dir: "default_metadata"}, logger)
//	if err != nil {
//	    return err // startup fails
//	}
//	metadata.SetDefault(reg)
//
// Lookups hand out deep copies, so callers may modify what they get back.
package metadata
