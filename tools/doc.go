// Package tools defines the Tool interface for agents, including registration
// with an MCP server, parameter schema and lifecycle callbacks.
package tools
