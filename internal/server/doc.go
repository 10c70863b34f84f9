// Package server implements the MCP (Model Context Protocol) server for
// interactive moshing.
//
// The server keeps one session per loaded PNG: the decoded original, an
// engine bound to it and the most recent result. Every run starts again
// from the original, so a client can try seeds and options freely and save
// the one it likes.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - mosh_load: Load an original and describe it
//   - mosh_run: Mosh with given options and return seed, iterations and preview
//   - mosh_new_seed: Generate a seed
//   - mosh_defaults: Show or reset the session default options
//   - mosh_compare: Measure the last result against the original
//   - mosh_save: Write the last result to disk
//
// Options omitted from mosh_run come from the session defaults, which a run
// with "remember": true replaces.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
// The pixelmosh-mcp binary wires the server with fx; see Serve. Embedding
// it directly looks like:
//
//	srv := server.New(imaging.NewImageCache(afero.NewOsFs()), zap.NewNop())
//	if err := srv.Run(ctx); err != nil {
//	    return err
//	}
package server
