// Package mcp exposes episodes as Model Context Protocol tools, so an MCP client can be
// evaluated by playing turns through tool calls.
package mcp
