package sources

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout of the optional seed file:
//
//	- group: Languages
//	  repositories:
//	    - url: https://github.com/avelino/awesome-go
//	      name: awesome-go
//	      description: Go frameworks, libraries and software
type SeedFile []SeedGroup

type SeedGroup struct {
	Group        string     `yaml:"group"`
	Repositories []SeedRepo `yaml:"repositories"`
}

type SeedRepo struct {
	URL         string `yaml:"url"`
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// SeedLoader reads hand-picked repositories from a YAML file.
type SeedLoader struct {
	filePath string
}

func NewSeedLoader(filePath string) *SeedLoader {
	return &SeedLoader{filePath: filePath}
}

// Load reads and maps the seed file. Environment references like ${VAR} in
// the file are expanded before parsing.
func (l *SeedLoader) Load() ([]Repository, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var file SeedFile
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed yaml: %w", err)
	}

	return MapSeed(file)
}

// MapSeed converts the parsed file to repositories. Entries without a usable
// http(s) URL are skipped; a missing name defaults to the last path segment.
func MapSeed(file SeedFile) ([]Repository, error) {
	var repos []Repository
	for _, group := range file {
		for _, r := range group.Repositories {
			u, err := url.Parse(strings.TrimSpace(r.URL))
			if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
				continue
			}

			name := strings.TrimSpace(r.Name)
			if name == "" {
				name = path.Base(strings.TrimSuffix(u.Path, "/"))
			}
			if name == "" || name == "." || name == "/" {
				continue
			}

			repos = append(repos, Repository{
				Name:        name,
				Source:      u.String(),
				Description: r.Description,
			})
		}
	}

	if len(repos) == 0 {
		return nil, fmt.Errorf("no valid repositories found in seed file")
	}
	return Append(nil, repos...), nil
}
