// Package model defines data structures for mcp-demo.
//
// This package contains:
//   - Note: in-process note data model
//   - Config: server configuration
//   - JSON-RPC 2.0: request/response/error structures
//   - MCP: tools, resources and prompts wire types
package model
