package repository

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadCredentialFile reads a username -> password hash mapping from path.
// The file may be YAML or JSON (a JSON object is valid YAML):
//
//	alice: 2bb80d537b1da3e38bd30361aa855686bde0eacd7162fef6a25fe97bf527a25b
//	bob: "..."
func LoadCredentialFile(path string) (*MapCredentialStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credential file %q: %w", path, err)
	}

	entries := make(map[string]string)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse credential file %q: %w", path, err)
	}

	for username, hash := range entries {
		if username == "" || hash == "" {
			return nil, fmt.Errorf("parse credential file %q: empty username or hash", path)
		}
	}

	return NewMapCredentialStore(entries), nil
}
