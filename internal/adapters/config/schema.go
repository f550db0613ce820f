package config

import (
	"github.com/ocx-dev/ocx/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// The registries key maps a name to either a bare url string or a
// {url, version} object:
//
//	registries:
//	  core: https://registry.example.com
//	  pinned:
//	    url: https://pinned.example.com
//	    version: 1.2.0
//	lockRegistries: true

type document struct {
	Registries     yaml.Node `yaml:"registries"`
	LockRegistries bool      `yaml:"lockRegistries"`
}

type registryObject struct {
	URL     string `yaml:"url"`
	Version string `yaml:"version,omitempty"`
}

func parse(data []byte) (*Project, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, zerr.Wrap(err, "failed to parse project config")
	}

	project := &Project{LockRegistries: doc.LockRegistries}
	if doc.Registries.Kind == 0 {
		return project, nil
	}
	if doc.Registries.Kind != yaml.MappingNode {
		return nil, zerr.New("registries must be a mapping")
	}

	// Mapping nodes keep the document's key order, which is priority order.
	for i := 0; i+1 < len(doc.Registries.Content); i += 2 {
		key := doc.Registries.Content[i]
		value := doc.Registries.Content[i+1]

		reg := domain.Registry{Name: key.Value}
		switch value.Kind {
		case yaml.ScalarNode:
			reg.BaseURL = value.Value
		case yaml.MappingNode:
			var obj registryObject
			if err := value.Decode(&obj); err != nil {
				return nil, zerr.With(zerr.Wrap(err, "failed to parse registry"), "registry", key.Value)
			}
			reg.BaseURL = obj.URL
			reg.PinnedVersion = obj.Version
		default:
			return nil, zerr.With(zerr.New("registry must be a url or an object"), "registry", key.Value)
		}

		if err := reg.Validate(); err != nil {
			return nil, err
		}
		project.Registries = append(project.Registries, reg)
	}
	return project, nil
}

func render(project *Project) ([]byte, error) {
	registries := &yaml.Node{Kind: yaml.MappingNode}
	for _, reg := range project.Registries {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: reg.Name}

		var value yaml.Node
		if reg.PinnedVersion == "" {
			value = yaml.Node{Kind: yaml.ScalarNode, Value: reg.BaseURL}
		} else {
			if err := value.Encode(registryObject{URL: reg.BaseURL, Version: reg.PinnedVersion}); err != nil {
				return nil, zerr.Wrap(err, "failed to encode registry")
			}
		}
		registries.Content = append(registries.Content, key, &value)
	}

	doc := document{Registries: *registries, LockRegistries: project.LockRegistries}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to marshal project config")
	}
	return data, nil
}
