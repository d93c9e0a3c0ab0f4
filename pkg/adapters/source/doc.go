// Package source resolves template names to descriptors.
//
// Embedded reads a file system once and serves Static templates, which is what production
// builds use. Directory reads from disk on every lookup and serves Dynamic templates, so edits
// show up on the next request without a restart.
package source
