// Package server implements the MCP (Model Context Protocol) server for map merging tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the merge engine
// through the MCP protocol, so an MCP client can run merges and inspect why a
// pixel was flagged without leaving the conversation.
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
//   - map_merge: Merge a maps directory and write the merged and diagnostic maps
//   - map_changes: Pixels where one variant differs from the base map
//   - map_compare_pair: Conflicts and near misses between two variants
//   - map_classify_pixel: How a merge treats one pixel
//
// # Map Caching
//
// Decoded maps are cached by path and reused across tool calls. Each entry
// remembers the file's modification time and size, and a changed file is
// decoded again, so every tool answers from the maps as they are on disk.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
package server
