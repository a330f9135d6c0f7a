package cmd

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// outputStructured renders a value as JSON or YAML to stdout.
func outputStructured(v interface{}, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal to JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal to YAML: %w", err)
		}
		fmt.Print(string(data))
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// maskToken hides the middle of a secret for display.
func maskToken(t string) string {
	if len(t) <= 6 {
		return "******"
	}
	return t[:3] + "******" + t[len(t)-3:]
}
