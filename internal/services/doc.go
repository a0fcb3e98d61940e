// Package services defines the error taxonomy shared by pipeline stages and
// the context annotations used to thread analysis identity through logging.
//
// Every stage boundary converts collaborator failures into one of the
// exported sentinel errors via Wrap; the orchestrator classifies the sentinel
// into a stage status instead of inspecting error strings.
package services
