package mcpserver

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// parseJSON decodes a JSON-encoded tool argument into target.
func parseJSON(data string, target any) error {
	return json.Unmarshal([]byte(data), target)
}

// marshalJSON renders v as indented JSON for tool results.
func marshalJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// stringMapArg decodes an optional argument holding a JSON object of
// strings. A missing or empty argument yields nil.
func stringMapArg(req mcp.CallToolRequest, key string) (map[string]string, error) {
	raw := req.GetString(key, "")
	if raw == "" {
		return nil, nil
	}
	var out map[string]string
	if err := parseJSON(raw, &out); err != nil {
		return nil, fmt.Errorf("invalid %s JSON: %w", key, err)
	}
	return out, nil
}
