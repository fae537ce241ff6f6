// Package mcp provides an MCP (Model Context Protocol) server adapter for chainaudit.
// It lets AI assistants ask audit questions, analyse deployed contracts and
// ingest analyzer reports.
package mcp

import "errors"

// ErrMissingAskService is returned when the ask service is not provided.
var ErrMissingAskService = errors.New("mcp: ask service is required")
