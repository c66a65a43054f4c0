package campaign

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harrison/casework/internal/cases"
)

// YAMLParser parses YAML campaign files.
//
// Layout:
//
//	name: nightly
//	stop_on_failure: false
//	cases:
//	  - case: LidDrivenCavity
//	    params:
//	      reynolds: 100
//	    sweep:
//	      scheme: [upwind, quick]
//	      cfl: [0.5, 0.9]
type YAMLParser struct{}

func NewYAMLParser() *YAMLParser {
	return &YAMLParser{}
}

type yamlCampaign struct {
	Name          string      `yaml:"name"`
	StopOnFailure bool        `yaml:"stop_on_failure"`
	Cases         []yamlEntry `yaml:"cases"`
}

type yamlEntry struct {
	Case   string         `yaml:"case"`
	Params map[string]any `yaml:"params"`
	Sweep  yaml.Node      `yaml:"sweep"`
}

func (p *YAMLParser) Parse(r io.Reader) (*Campaign, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}

	var raw yamlCampaign
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	camp := &Campaign{
		Name:          raw.Name,
		StopOnFailure: raw.StopOnFailure,
	}
	for i, e := range raw.Cases {
		name := strings.TrimSpace(e.Case)
		if name == "" {
			return nil, fmt.Errorf("cases[%d]: missing case name", i)
		}
		axes, err := decodeSweep(&e.Sweep)
		if err != nil {
			return nil, fmt.Errorf("cases[%d] (%s): %w", i, name, err)
		}
		camp.Entries = append(camp.Entries, Entry{
			CaseType: name,
			Params:   e.Params,
			Sweep:    axes,
		})
	}
	if len(camp.Entries) == 0 {
		return nil, fmt.Errorf("campaign defines no cases")
	}

	return camp, nil
}

// decodeSweep decodes a sweep mapping into axes, preserving the declaration
// order of the keys. The order fixes how combinations are enumerated, so a
// plain map decode would not do.
func decodeSweep(node *yaml.Node) ([]cases.Axis, error) {
	if node == nil || node.IsZero() {
		return nil, nil
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("sweep must map parameter names to value lists")
	}

	axes := make([]cases.Axis, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		valueNode := node.Content[i+1]
		if valueNode.Kind == yaml.AliasNode {
			valueNode = valueNode.Alias
		}

		var values []any
		if valueNode.Kind == yaml.SequenceNode {
			if err := valueNode.Decode(&values); err != nil {
				return nil, fmt.Errorf("sweep values for %q: %w", name, err)
			}
		} else {
			// A bare scalar pins the axis to a single value.
			var single any
			if err := valueNode.Decode(&single); err != nil {
				return nil, fmt.Errorf("sweep value for %q: %w", name, err)
			}
			values = []any{single}
		}
		axes = append(axes, cases.Axis{Param: name, Values: values})
	}
	return axes, nil
}
