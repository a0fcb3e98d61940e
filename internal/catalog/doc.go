// Package catalog persists finalized pipeline reports in a SQLite database
// under the configured catalog directory. Writers are serialized with a file
// lock; listing queries read denormalized summary columns.
package catalog
