package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
)

const (
	formatYAML = "yaml"
	formatJSON = "json"
)

func encodePortfolio(w io.Writer, p *portfolio.Portfolio, format string) error {
	switch strings.ToLower(format) {
	case formatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}
	return fmt.Errorf("unsupported format %q (want yaml or json)", format)
}

// payloadFromDocument turns a YAML or JSON document into the JSON update
// payload accepted by the API. JSON input is valid YAML, so both go through
// the YAML decoder.
func payloadFromDocument(data []byte) ([]byte, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("document is empty")
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if _, ok := doc.(map[string]any); !ok {
		return nil, fmt.Errorf("document must be a mapping, got %T", doc)
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert document to json: %w", err)
	}
	return payload, nil
}
