// Package mcp exposes the room directory over the Model Context
// Protocol. The client is a thin proxy: every tool call is translated
// into a request against the REST API, so MCP consumers observe the
// same state as HTTP clients without a second code path.
package mcp
