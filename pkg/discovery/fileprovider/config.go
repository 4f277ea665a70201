package fileprovider

import "gopkg.in/yaml.v3"

// Config defines a set of routes for the relay to serve. The file is YAML,
// a JSON config file is accepted as well, as YAML is its superset.
type Config struct {
	Version string           `yaml:"version"`
	Routes  map[string]Route `yaml:"routes"`
}

// Route specifies where and how to forward a single webhook.
type Route struct {
	ForwardURL    string     `yaml:"forward-url"`
	ForwardMethod string     `yaml:"forward-method"`
	Fields        []Field    `yaml:"fields"`
	Reply         *yaml.Node `yaml:"reply"`
}

// Field specifies a single value to move from the inbound body
// into the outgoing document.
type Field struct {
	From     []any `yaml:"from"`
	To       []any `yaml:"to"`
	Optional bool  `yaml:"optional"`
}
