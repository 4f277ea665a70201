// Package fileprovider provides a file-based discovery provider.
package fileprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Semior001/forwardhook/pkg/discovery"
	"github.com/Semior001/forwardhook/pkg/jsonval"
	"github.com/cappuccinotm/slogx"
	"gopkg.in/yaml.v3"
)

// File discovers the changes in routes from a file.
type File struct {
	FileName      string
	CheckInterval time.Duration
	Delay         time.Duration
}

// Name returns the name of the provider.
func (d *File) Name() string {
	return fmt.Sprintf("file:%s", d.FileName)
}

// Events checks whether the file has been changed.
func (d *File) Events(ctx context.Context) <-chan string {
	res := make(chan string)

	trySubmit := func(ch chan string) bool {
		select {
		case ch <- d.Name():
			return true
		default:
			return false
		}
	}

	go func() {
		ticker := time.NewTicker(d.CheckInterval)
		defer close(res)
		defer ticker.Stop()

		var lastModif, modif time.Time
		var ok bool

		if modif, ok = d.getModifTime(ctx); ok { // parse for the first time
			res <- d.Name()
			lastModif = modif
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if modif, ok = d.getModifTime(ctx); !ok {
					continue
				}

				// don't react on modification right away
				if modif == lastModif || modif.Sub(lastModif) < d.Delay {
					continue
				}

				slog.DebugContext(ctx, "file changed",
					slog.String("file", d.FileName),
					slog.String("last_modified", lastModif.Format(time.RFC3339Nano)),
					slog.String("current_modified", modif.Format(time.RFC3339Nano)))

				if trySubmit(res) {
					lastModif = modif
				}
			}
		}
	}()

	return res
}

// Routes parses the file and returns the routes from it.
func (d *File) Routes(context.Context) ([]discovery.Route, error) {
	f, err := os.Open(d.FileName)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	defer f.Close()

	var cfg Config
	if err = yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode file: %w", err)
	}

	return routes(cfg)
}

func routes(cfg Config) ([]discovery.Route, error) {
	if cfg.Version != "1" {
		return nil, fmt.Errorf("unsupported version: %s", cfg.Version)
	}

	res := make([]discovery.Route, 0, len(cfg.Routes))
	for name, r := range cfg.Routes {
		route, err := parseRoute(name, r)
		if err != nil {
			return nil, fmt.Errorf("parse route %q: %w", name, err)
		}

		res = append(res, route)
	}

	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })

	return res, nil
}

func parseRoute(name string, r Route) (result discovery.Route, err error) {
	if r.ForwardURL == "" {
		return discovery.Route{}, fmt.Errorf("empty forward-url")
	}

	result.Name = name
	result.ForwardURL = r.ForwardURL

	result.Method = strings.ToUpper(r.ForwardMethod)
	if result.Method == "" {
		result.Method = discovery.ForwardMethods[0]
	}
	if !slices.Contains(discovery.ForwardMethods, result.Method) {
		return discovery.Route{}, fmt.Errorf("unsupported forward-method: %s", r.ForwardMethod)
	}

	for idx, f := range r.Fields {
		mapping := discovery.FieldMapping{Optional: f.Optional}

		if mapping.From, err = parsePath(f.From); err != nil {
			return discovery.Route{}, fmt.Errorf("parse field #%d from-path: %w", idx, err)
		}

		if mapping.To, err = parsePath(f.To); err != nil {
			return discovery.Route{}, fmt.Errorf("parse field #%d to-path: %w", idx, err)
		}

		result.Fields = append(result.Fields, mapping)
	}

	if r.Reply != nil {
		if result.Reply, err = replyValue(r.Reply); err != nil {
			return discovery.Route{}, fmt.Errorf("parse reply: %w", err)
		}
	}

	return result, nil
}

func parsePath(elems []any) (jsonval.Path, error) {
	if len(elems) == 0 {
		return nil, fmt.Errorf("empty path")
	}

	path := make(jsonval.Path, 0, len(elems))
	for idx, el := range elems {
		switch el := el.(type) {
		case string:
			path = append(path, jsonval.Key(el))
		case int:
			if el < 0 {
				return nil, fmt.Errorf("negative index %d at segment #%d", el, idx)
			}
			path = append(path, jsonval.Index(el))
		default:
			return nil, fmt.Errorf("unsupported segment #%d of type %T", idx, el)
		}
	}

	if _, ok := path[0].(jsonval.Key); !ok {
		return nil, fmt.Errorf("path must begin with an object key")
	}

	return path, nil
}

// replyValue converts the reply template into a JSON value,
// it must be a mapping, as replies are JSON objects.
func replyValue(node *yaml.Node) (*jsonval.Value, error) {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}

	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("reply must be an object")
	}

	return yamlValue(node)
}

func yamlValue(node *yaml.Node) (*jsonval.Value, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return yamlValue(node.Alias)
	case yaml.MappingNode:
		obj := jsonval.NewObject()
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, elem := node.Content[i], node.Content[i+1]
			child, err := yamlValue(elem)
			if err != nil {
				return nil, fmt.Errorf("value of key %q: %w", key.Value, err)
			}
			obj.Object().Set(key.Value, child)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := jsonval.NewArray()
		for idx, elem := range node.Content {
			child, err := yamlValue(elem)
			if err != nil {
				return nil, fmt.Errorf("element #%d: %w", idx, err)
			}
			arr.Append(child)
		}
		return arr, nil
	case yaml.ScalarNode:
		return yamlScalar(node)
	default:
		return nil, fmt.Errorf("unsupported node kind %v", node.Kind)
	}
}

func yamlScalar(node *yaml.Node) (*jsonval.Value, error) {
	switch node.Tag {
	case "!!null":
		return jsonval.Null(), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, fmt.Errorf("decode bool: %w", err)
		}
		return jsonval.Bool(b), nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return nil, fmt.Errorf("decode int: %w", err)
		}
		return jsonval.Int(i), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, fmt.Errorf("decode float: %w", err)
		}
		return jsonval.Number(json.Number(strconv.FormatFloat(f, 'g', -1, 64))), nil
	default:
		return jsonval.String(node.Value), nil
	}
}

func (d *File) getModifTime(ctx context.Context) (modif time.Time, ok bool) {
	fi, err := os.Stat(d.FileName)
	if err != nil {
		slog.WarnContext(ctx, "failed to read file",
			slog.String("file", d.FileName),
			slogx.Error(err))
		return time.Time{}, false
	}

	if fi.IsDir() {
		slog.WarnContext(ctx, "expected file, but found a directory",
			slog.String("file", d.FileName))
		return time.Time{}, false
	}

	return fi.ModTime(), true
}
