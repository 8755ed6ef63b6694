// Package errors provides standardized error handling patterns for platform
// components.
//
// # Overview
//
// The errors package implements a three-class error classification system:
// Transient (temporary, retryable), Invalid (bad input, non-retryable), and
// Fatal (unrecoverable, stop processing).
//
// This classification enables intelligent error handling strategies across
// the platform: handler exceptions are isolated to their task, reservation
// leaks are reported without tearing down the pipeline, and fatal errors
// (build errors, durability violations) abort startup or crash the process.
//
// # Usage
//
// Wrap errors at component boundaries with the classification helpers:
//
//	listener, err := net.Listen("tcp", s.address)
//	if err != nil {
//		return errors.WrapTransient(err, "diagnostics", "Start", "bind listener")
//	}
//
// Callers branch on classification, never on error strings:
//
//	if errors.IsFatal(err) {
//		panic(err)
//	}
package errors
