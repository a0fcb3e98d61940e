// Package semantic wraps the external video-understanding service that
// produces the whole-video entity catalog: unique people, products in use,
// and a timestamped event timeline. The pipeline treats the service as a
// collaborator reachable through the Analyzer contract; Client is the HTTP
// implementation.
package semantic
