// Package haproxyadmin owns a client for the HAProxy runtime API, the
// line-oriented administrative protocol a running haproxy exposes over
// a TCP stats socket.
//
// Ownership boundary:
// - session lifecycle over one admin connection (reuse, liveness probe, reconnect)
// - command execution and line-by-line response parsing
// - severity signal classification
// - high-level operations: process info, certificate inventory,
//   certificate detail, certificate hot replacement
//
// One Client is one serialized command stream; callers that need
// parallel commands open one Client each.
package haproxyadmin
