// Package maps serves the embedded road maps and generates random graphs
// for the path-finding views.
package maps

import (
	"embed"
	"fmt"
	"math"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/rendis/dsviz/internal/algorithms"
	"github.com/rendis/dsviz/internal/validation"
	"github.com/rendis/dsviz/pkg/schema"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Canvas size nodes are projected onto.
const (
	CanvasWidth  = 800.0
	CanvasHeight = 600.0
	canvasPad    = 40.0
)

// City is a map node with its geographic position.
type City struct {
	ID    string  `json:"id" yaml:"id"`
	Label string  `json:"label" yaml:"label"`
	City  string  `json:"city,omitempty" yaml:"city,omitempty"`
	Lat   float64 `json:"lat" yaml:"lat"`
	Lon   float64 `json:"lon" yaml:"lon"`
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
}

// Road is a map edge. Weight is what the path algorithms minimise.
type Road struct {
	ID         string  `json:"id,omitempty" yaml:"id,omitempty"`
	Source     string  `json:"source" yaml:"source"`
	Target     string  `json:"target" yaml:"target"`
	Weight     float64 `json:"weight" yaml:"weight"`
	DistanceKM float64 `json:"distance_km,omitempty" yaml:"distance_km,omitempty"`
	Minutes    int     `json:"minutes,omitempty" yaml:"minutes,omitempty"`
	Road       string  `json:"road,omitempty" yaml:"road,omitempty"`
}

// Map is a named road network.
type Map struct {
	Name  string `json:"name" yaml:"name"`
	Nodes []City `json:"nodes" yaml:"nodes"`
	Edges []Road `json:"edges" yaml:"edges"`
}

// Document returns the plain graph document of m.
func (m Map) Document() algorithms.Document {
	doc := algorithms.Document{
		Name:  m.Name,
		Nodes: make([]algorithms.Node, len(m.Nodes)),
		Edges: make([]algorithms.Edge, len(m.Edges)),
	}
	for i, c := range m.Nodes {
		doc.Nodes[i] = algorithms.Node{ID: c.ID, Label: c.Label, X: c.X, Y: c.Y}
	}
	for i, r := range m.Edges {
		doc.Edges[i] = algorithms.Edge{ID: r.ID, Source: r.Source, Target: r.Target, Weight: r.Weight}
	}
	return doc
}

// Graph builds the graph of m.
func (m Map) Graph() *algorithms.Graph {
	return m.Document().Graph()
}

// Parse decodes a YAML (or JSON) map, projects nodes without canvas
// coordinates and checks the result. Warnings are ignored.
func Parse(data []byte) (Map, error) {
	var m Map
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Map{}, schema.NewError(schema.ErrCodeInvalidGraph, "malformed map document").WithCause(err)
	}
	for i := range m.Edges {
		if m.Edges[i].ID == "" {
			m.Edges[i].ID = fmt.Sprintf("%s-%s", m.Edges[i].Source, m.Edges[i].Target)
		}
	}
	project(m.Nodes)

	if err := validation.CheckDocument(m.Document()).ToError(); err != nil {
		return Map{}, schema.NewErrorf(schema.ErrCodeInvalidGraph, "map %q is inconsistent", m.Name).WithCause(err)
	}
	return m, nil
}

// project fills X and Y from latitude and longitude when every node lacks
// them, fitting the bounding box into the canvas with north up.
func project(cities []City) {
	if len(cities) == 0 {
		return
	}
	for _, c := range cities {
		if c.X != 0 || c.Y != 0 {
			return
		}
	}

	minLat, maxLat := math.Inf(1), math.Inf(-1)
	minLon, maxLon := math.Inf(1), math.Inf(-1)
	for _, c := range cities {
		minLat, maxLat = math.Min(minLat, c.Lat), math.Max(maxLat, c.Lat)
		minLon, maxLon = math.Min(minLon, c.Lon), math.Max(maxLon, c.Lon)
	}
	spanLat := math.Max(maxLat-minLat, 1e-9)
	spanLon := math.Max(maxLon-minLon, 1e-9)

	for i := range cities {
		cities[i].X = canvasPad + (cities[i].Lon-minLon)/spanLon*(CanvasWidth-2*canvasPad)
		cities[i].Y = canvasPad + (maxLat-cities[i].Lat)/spanLat*(CanvasHeight-2*canvasPad)
	}
}

var (
	loadOnce sync.Once
	builtin  map[string]Map
	loadErr  error
)

func loadBuiltin() {
	builtin = make(map[string]Map)
	entries, err := dataFS.ReadDir("data")
	if err != nil {
		loadErr = err
		return
	}
	for _, e := range entries {
		data, err := dataFS.ReadFile(path.Join("data", e.Name()))
		if err != nil {
			loadErr = err
			return
		}
		m, err := Parse(data)
		if err != nil {
			loadErr = fmt.Errorf("embedded map %s: %w", e.Name(), err)
			return
		}
		builtin[m.Name] = m
	}
}

// Names lists the embedded maps.
func Names() []string {
	loadOnce.Do(loadBuiltin)
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Get returns an embedded map by case-insensitive name.
func Get(name string) (Map, error) {
	loadOnce.Do(loadBuiltin)
	if loadErr != nil {
		return Map{}, loadErr
	}
	m, ok := builtin[strings.ToLower(name)]
	if !ok {
		return Map{}, schema.NewErrorf(schema.ErrCodeNotFound, "unknown map %q", name).
			WithDetails(map[string]any{"available": Names()})
	}
	return m, nil
}

// Load returns the graph of an embedded map.
func Load(name string) (*algorithms.Graph, error) {
	m, err := Get(name)
	if err != nil {
		return nil, err
	}
	return m.Graph(), nil
}
