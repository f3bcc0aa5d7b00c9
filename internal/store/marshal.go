package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/blabel/internal/canonjson"
)

// marshalOptions converts options to canonical JSON TEXT and its hash.
func marshalOptions(opts map[string]string) (string, string, error) {
	if opts == nil {
		opts = map[string]string{}
	}
	data, err := canonjson.Marshal(opts)
	if err != nil {
		return "", "", fmt.Errorf("marshal options: %w", err)
	}
	return string(data), canonjson.HashWithDomain(canonjson.DomainOptions, data), nil
}

// unmarshalOptions parses canonical JSON TEXT to options.
func unmarshalOptions(data string) (map[string]string, error) {
	opts := map[string]string{}
	if data == "" || data == "{}" {
		return opts, nil
	}
	if err := json.Unmarshal([]byte(data), &opts); err != nil {
		return nil, fmt.Errorf("unmarshal options: %w", err)
	}
	return opts, nil
}
