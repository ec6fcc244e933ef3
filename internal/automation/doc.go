// Package automation runs YAML scenarios: ordered lists of headless runs,
// each built from a preset with optional seed and physics overrides.
package automation
