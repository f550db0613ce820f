// Package domain contains the core domain models for the component manager:
// components, registries, install plans, lock entries, profiles and drift.
package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// ComponentType distinguishes the kinds of installable components.
type ComponentType string

const (
	// TypeSkill is a skill definition installed under skills/.
	TypeSkill ComponentType = "skill"
	// TypeAgent is an agent definition installed under agents/.
	TypeAgent ComponentType = "agent"
	// TypePlugin is a plugin installed under plugins/.
	TypePlugin ComponentType = "plugin"
	// TypeCommand is a command definition installed under commands/.
	TypeCommand ComponentType = "command"
	// TypeTool is a tool definition installed under tools/.
	TypeTool ComponentType = "tool"
	// TypeBundle enumerates other components to install transitively.
	// A bundle owns no files of its own.
	TypeBundle ComponentType = "bundle"
)

// Valid reports whether t is a known component type.
func (t ComponentType) Valid() bool {
	switch t {
	case TypeSkill, TypeAgent, TypePlugin, TypeCommand, TypeTool, TypeBundle:
		return true
	}
	return false
}

// Dir returns the default install directory for the type. Bundles own no
// files and have no directory.
func (t ComponentType) Dir() string {
	switch t {
	case TypeSkill:
		return "skills"
	case TypeAgent:
		return "agents"
	case TypePlugin:
		return "plugins"
	case TypeCommand:
		return "commands"
	case TypeTool:
		return "tools"
	}
	return ""
}

// ComponentID identifies a component, optionally qualified by its source
// registry. The string form is "registry/name", or just "name" when the
// registry is to be inferred by search order.
type ComponentID struct {
	// Registry is the source registry name. Empty means unqualified.
	Registry string

	// Name is the component name within the registry.
	Name string
}

// String returns the canonical identifier form.
func (id ComponentID) String() string {
	if id.Registry == "" {
		return id.Name
	}
	return id.Registry + "/" + id.Name
}

// Qualified reports whether the identifier names an explicit registry.
func (id ComponentID) Qualified() bool {
	return id.Registry != ""
}

// Request is a user's intent to install a component, parsed from the
// "registry/name@constraint" syntax. Registry and Constraint are optional.
type Request struct {
	ID         ComponentID
	Constraint string
}

// ParseRequest parses an identifier of the form "[registry/]name[@constraint]".
func ParseRequest(s string) (Request, error) {
	if strings.TrimSpace(s) == "" {
		return Request{}, zerr.New("empty component identifier")
	}

	var req Request
	rest := s
	if at := strings.LastIndex(rest, "@"); at > 0 {
		req.Constraint = rest[at+1:]
		rest = rest[:at]
	}
	if slash := strings.Index(rest, "/"); slash >= 0 {
		req.ID.Registry = rest[:slash]
		req.ID.Name = rest[slash+1:]
	} else {
		req.ID.Name = rest
	}

	if req.ID.Name == "" {
		return Request{}, zerr.With(zerr.New("malformed component identifier"), "identifier", s)
	}
	return req, nil
}

// FileMapping declares one file owned by a component: its path within the
// registry and an optional explicit target path relative to the install root.
type FileMapping struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
}

// Manifest describes a single version of a component as published by a
// registry.
type Manifest struct {
	Name         string         `json:"name"`
	Type         ComponentType  `json:"type"`
	Version      string         `json:"version"`
	Description  string         `json:"description,omitempty"`
	Dependencies []string       `json:"dependencies,omitempty"`
	Files        []FileMapping  `json:"files,omitempty"`
	Config       map[string]any `json:"config,omitempty"`
}

// ManifestSet holds every published version of one component, as returned by
// the registry's components/{name}.json endpoint.
type ManifestSet struct {
	Name     string     `json:"name"`
	Versions []Manifest `json:"versions"`
}
