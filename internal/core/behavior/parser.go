package behavior

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// NodeConfig describes one node in a declarative tree file, in JSON or
// YAML. Prioritizers and actions are referenced by the names they were
// registered under with the Parser.
type NodeConfig struct {
	Name        string        `json:"name" yaml:"name"`
	Type        string        `json:"type" yaml:"type"`
	Prioritizer string        `json:"prioritizer,omitempty" yaml:"prioritizer,omitempty"`
	Background  bool          `json:"background,omitempty" yaml:"background,omitempty"`
	Preemptive  bool          `json:"preemptive,omitempty" yaml:"preemptive,omitempty"`
	Uniform     bool          `json:"uniform,omitempty" yaml:"uniform,omitempty"`
	Delay       float64       `json:"delay,omitempty" yaml:"delay,omitempty"` // seconds
	Children    []*NodeConfig `json:"children,omitempty" yaml:"children,omitempty"`
	Action      string        `json:"action,omitempty" yaml:"action,omitempty"`
}

// FileConfig is the top level of a tree definition file: any number of root
// nodes, each becoming one definition keyed by its name.
type FileConfig struct {
	Trees []*NodeConfig `json:"trees" yaml:"trees"`
}

var kindNames = map[string]Kind{
	"priority": KindPriority,
	"selector": KindSelector,
	"random":   KindRandom,
	"inverter": KindInverter,
	"timer":    KindTimer,
	"leaf":     KindLeaf,
}

// Parser turns declarative tree descriptions into NodeDefs. Before parsing,
// every prioritizer and action a file refers to must be registered by name;
// parsing fails eagerly on the first unresolved reference or structural
// problem, returning nothing partial.
type Parser struct {
	prioritizers map[string]Prioritizer
	actions      map[string]*ActionDef
}

// NewParser creates a parser with empty callback registries.
func NewParser() *Parser {
	return &Parser{
		prioritizers: make(map[string]Prioritizer),
		actions:      make(map[string]*ActionDef),
	}
}

// AddPrioritizer registers a priority function under name.
func (p *Parser) AddPrioritizer(name string, fn Prioritizer) error {
	if _, exists := p.prioritizers[name]; exists {
		return fmt.Errorf("prioritizer %q: %w", name, ErrNameInUse)
	}
	p.prioritizers[name] = fn
	return nil
}

// AddAction registers an action definition under name.
func (p *Parser) AddAction(name string, def *ActionDef) error {
	if _, exists := p.actions[name]; exists {
		return fmt.Errorf("action %q: %w", name, ErrNameInUse)
	}
	p.actions[name] = def
	return nil
}

// Prioritizer returns the priority function registered under name.
func (p *Parser) Prioritizer(name string) (Prioritizer, bool) {
	fn, exists := p.prioritizers[name]
	return fn, exists
}

// Action returns the action definition registered under name.
func (p *Parser) Action(name string) (*ActionDef, bool) {
	def, exists := p.actions[name]
	return def, exists
}

// RemovePrioritizer unregisters a priority function, reporting whether it
// was present.
func (p *Parser) RemovePrioritizer(name string) bool {
	_, exists := p.prioritizers[name]
	delete(p.prioritizers, name)
	return exists
}

// RemoveAction unregisters an action definition, reporting whether it was
// present.
func (p *Parser) RemoveAction(name string) bool {
	_, exists := p.actions[name]
	delete(p.actions, name)
	return exists
}

// ParseJSON reads a JSON tree file and returns the definitions keyed by
// root name.
func (p *Parser) ParseJSON(r io.Reader) (map[string]*NodeDef, error) {
	var file FileConfig
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode tree config: %w", err)
	}
	return p.resolveFile(&file)
}

// ParseYAML reads a YAML tree file and returns the definitions keyed by
// root name.
func (p *Parser) ParseYAML(r io.Reader) (map[string]*NodeDef, error) {
	var file FileConfig
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode tree config: %w", err)
	}
	return p.resolveFile(&file)
}

func (p *Parser) resolveFile(file *FileConfig) (map[string]*NodeDef, error) {
	defs := make(map[string]*NodeDef, len(file.Trees))
	for _, root := range file.Trees {
		def, err := p.Resolve(root)
		if err != nil {
			return nil, err
		}
		defs[def.Name] = def
	}
	return defs, nil
}

// Resolve converts one node config, and everything below it, into a
// NodeDef with all callback references bound and the structure validated.
func (p *Parser) Resolve(cfg *NodeConfig) (*NodeDef, error) {
	def, err := p.resolve(cfg)
	if err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

func (p *Parser) resolve(cfg *NodeConfig) (*NodeDef, error) {
	kind, ok := kindNames[strings.ToLower(cfg.Type)]
	if !ok {
		return nil, fmt.Errorf("node %q type %q: %w", cfg.Name, cfg.Type, ErrUnknownNodeType)
	}
	def := &NodeDef{
		Name:       cfg.Name,
		Kind:       kind,
		Background: cfg.Background,
		Preemptive: cfg.Preemptive,
		Uniform:    cfg.Uniform,
		Delay:      time.Duration(cfg.Delay * float64(time.Second)),
	}
	if cfg.Prioritizer != "" {
		fn, exists := p.prioritizers[cfg.Prioritizer]
		if !exists {
			return nil, fmt.Errorf("node %q prioritizer %q: %w", cfg.Name, cfg.Prioritizer, ErrUnknownPrioritizer)
		}
		def.Prioritizer = fn
	}
	if cfg.Action != "" {
		action, exists := p.actions[cfg.Action]
		if !exists {
			return nil, fmt.Errorf("node %q action %q: %w", cfg.Name, cfg.Action, ErrUnknownAction)
		}
		def.Action = action
	}
	for _, childCfg := range cfg.Children {
		child, err := p.resolve(childCfg)
		if err != nil {
			return nil, err
		}
		def.Children = append(def.Children, child)
	}
	return def, nil
}
