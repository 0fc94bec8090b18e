package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Endpoint is a remote feed the loader polls.
type Endpoint struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	URL     string `json:"url" yaml:"url"`
	Enabled *bool  `json:"enabled" yaml:"enabled"`
}

// IsEnabled returns the enabled flag defaulting to true.
func (e Endpoint) IsEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}

type fileFormat struct {
	Endpoints []Endpoint `json:"endpoints" yaml:"endpoints"`
}

// Registry holds the endpoints declared in a config file.
type Registry struct {
	mu        sync.RWMutex
	endpoints []Endpoint
	idx       map[string]Endpoint
}

// LoadRegistry reads and validates an endpoints file (YAML or JSON).
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("endpoints file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read endpoints file: %w", err)
	}

	file, err := parseFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return NewRegistry(file.Endpoints)
}

// NewRegistry validates eps and indexes them by id.
func NewRegistry(eps []Endpoint) (*Registry, error) {
	if len(eps) == 0 {
		return nil, errors.New("no endpoints configured")
	}

	reg := &Registry{
		endpoints: make([]Endpoint, 0, len(eps)),
		idx:       make(map[string]Endpoint, len(eps)),
	}
	for i, ep := range eps {
		ep = sanitize(ep)
		if err := validate(ep); err != nil {
			return nil, fmt.Errorf("endpoints[%d]: %w", i, err)
		}
		if _, exists := reg.idx[ep.ID]; exists {
			return nil, fmt.Errorf("duplicate endpoint id %q", ep.ID)
		}
		reg.endpoints = append(reg.endpoints, ep)
		reg.idx[ep.ID] = ep
	}
	return reg, nil
}

func parseFile(data []byte, ext string) (fileFormat, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var errs []error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var f fileFormat
		if err := d.fn(data, &f); err != nil {
			errs = append(errs, fmt.Errorf("decode %s endpoints: %w", d.name, err))
			continue
		}
		return f, nil
	}
	if len(errs) == 0 {
		return fileFormat{}, fmt.Errorf("endpoints file extension %q not recognized (expected YAML or JSON)", ext)
	}
	return fileFormat{}, errors.Join(errs...)
}

func sanitize(ep Endpoint) Endpoint {
	ep.ID = strings.TrimSpace(ep.ID)
	ep.Name = strings.TrimSpace(ep.Name)
	ep.URL = strings.TrimSpace(ep.URL)
	if ep.Name == "" {
		ep.Name = ep.ID
	}
	return ep
}

func validate(ep Endpoint) error {
	if ep.ID == "" {
		return errors.New("id is required")
	}
	if ep.URL == "" {
		return fmt.Errorf("url is required for endpoint %q", ep.ID)
	}
	u, err := url.Parse(ep.URL)
	if err != nil {
		return fmt.Errorf("endpoint %q url: %w", ep.ID, err)
	}
	if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
		return fmt.Errorf("endpoint %q url must be http or https", ep.ID)
	}
	if u.Host == "" {
		return fmt.Errorf("endpoint %q url must have a host", ep.ID)
	}
	return nil
}

// All returns a copy of every configured endpoint in file order.
func (r *Registry) All() []Endpoint {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Endpoint, len(r.endpoints))
	copy(out, r.endpoints)
	return out
}

// Enabled returns the endpoints that are switched on.
func (r *Registry) Enabled() []Endpoint {
	all := r.All()
	out := make([]Endpoint, 0, len(all))
	for _, ep := range all {
		if ep.IsEnabled() {
			out = append(out, ep)
		}
	}
	return out
}
