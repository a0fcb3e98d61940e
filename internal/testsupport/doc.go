// Package testsupport provides shared fixtures for package tests: temp-dir
// configs, an in-memory frame source, and scripted collaborator fakes.
package testsupport
