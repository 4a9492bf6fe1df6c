package xconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

func loadFromFile(config any, filename string, strict bool) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		return unmarshalJSON(data, config, strict)
	case ".yaml", ".yml":
		return unmarshalYAML(data, config, strict)
	default:
		return fmt.Errorf("unsupported file extension %s", ext)
	}
}

func unmarshalYAML(data []byte, config any, strict bool) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(strict)
	return dec.Decode(config)
}

func unmarshalJSON(data []byte, config any, strict bool) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if strict {
		dec.DisallowUnknownFields()
	}
	return dec.Decode(config)
}
