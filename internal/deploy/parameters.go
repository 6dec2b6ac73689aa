package deploy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	parametersSchema  = "https://schema.management.azure.com/schemas/2019-04-01/deploymentParameters.json#"
	parametersVersion = "1.0.0.0"
)

// parameterFile is the fixed top-level shape the template engine consumes.
type parameterFile struct {
	Schema         string                    `json:"$schema"`
	ContentVersion string                    `json:"contentVersion"`
	Parameters     map[string]parameterValue `json:"parameters"`
}

type parameterValue struct {
	Value any `json:"value"`
}

// writeParameterFile renders the parameter document to a temp file and
// returns its path. The file is write-once: it is handed to the deployment
// command and re-read by nothing.
func writeParameterFile(params map[string]any) (string, error) {
	doc := parameterFile{
		Schema:         parametersSchema,
		ContentVersion: parametersVersion,
		Parameters:     make(map[string]parameterValue, len(params)),
	}
	for name, value := range params {
		doc.Parameters[name] = parameterValue{Value: value}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding parameter file: %w", err)
	}

	dir, err := os.MkdirTemp("", "azdemo-params-")
	if err != nil {
		return "", fmt.Errorf("creating parameter dir: %w", err)
	}
	path := filepath.Join(dir, "parameters.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing parameter file: %w", err)
	}
	return path, nil
}
