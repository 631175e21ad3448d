// Package identity loads the persona/config document and renders the
// system-prompt preamble every handler shares.
package identity

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultProfilePath  = "profiles/example_profile.yaml"
	personalProfilePath = "profiles/personal_profile.yaml"
)

// Profile is the structured persona document. It is deliberately
// schema-free: whatever the YAML holds is rendered into the prompt.
type Profile map[string]any

// Load reads the profile. An explicit path wins; otherwise the personal
// profile is preferred when present, falling back to the example one.
// A missing or invalid profile is a hard configuration error.
func Load(path string) (Profile, error) {
	if path == "" {
		if _, err := os.Stat(personalProfilePath); err == nil {
			path = personalProfilePath
		} else {
			path = defaultProfilePath
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("profile %s is empty", path)
	}

	return p, nil
}

// BuildSystemPrompt renders the persona preamble. The profile is
// re-marshalled as YAML rather than dumped verbatim so the prompt stays
// stable across load-order differences.
func BuildSystemPrompt(p Profile) string {
	rendered, err := yaml.Marshal(p)
	if err != nil {
		rendered = []byte(fmt.Sprintf("%v", map[string]any(p)))
	}

	var b strings.Builder
	b.WriteString("You are a personal AI assistant acting as a second brain.\n")
	b.WriteString("Follow the user's tone, communication style, preferences, and guardrails in the profile.\n\n")
	b.WriteString("Profile (structured):\n")
	b.Write(rendered)
	b.WriteString("\nRules:\n")
	b.WriteString("- Respond in the user's voice.\n")
	b.WriteString("- Be clear, practical, and risk-aware.\n")
	b.WriteString("- If unsure, state assumptions.\n")
	return b.String()
}
