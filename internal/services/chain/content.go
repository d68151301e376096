package chain

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JaimeRLA/CorrelationGame/internal/model"
)

//go:embed content/default.yaml
var defaultContent []byte

type fileEndpoint struct {
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
	Src   string `yaml:"src"`
	Alt   string `yaml:"alt"`
}

type fileChain struct {
	ID        string         `yaml:"id"`
	Endpoints []fileEndpoint `yaml:"endpoints"`
	Answers   [][]string     `yaml:"answers"`
}

type contentFile struct {
	Chains []fileChain `yaml:"chains"`
}

// Content is the rotation of chains served one per UTC day
type Content struct {
	chains []model.Chain
}

// DefaultContent returns the embedded chain rotation
func DefaultContent() (*Content, error) {
	return ParseContent(defaultContent)
}

// LoadContent reads a chain rotation from a YAML file. An empty path
// selects the embedded default.
func LoadContent(path string) (*Content, error) {
	if path == "" {
		return DefaultContent()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chain content: %w", err)
	}
	return ParseContent(data)
}

// ParseContent decodes and validates YAML chain content
func ParseContent(data []byte) (*Content, error) {
	var file contentFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse chain content: %w", err)
	}
	if len(file.Chains) == 0 {
		return nil, model.ErrNoChainContent
	}

	chains := make([]model.Chain, 0, len(file.Chains))
	for i, fc := range file.Chains {
		c, err := fc.toModel()
		if err != nil {
			return nil, fmt.Errorf("chain %d (%s): %w", i, fc.ID, err)
		}
		chains = append(chains, c)
	}
	return &Content{chains: chains}, nil
}

func (fc fileChain) toModel() (model.Chain, error) {
	c := model.Chain{ID: fc.ID}
	if c.ID == "" {
		return c, errors.New("missing id")
	}

	for _, fe := range fc.Endpoints {
		e := model.Endpoint{Kind: model.EndpointKind(fe.Type), Value: fe.Value, Src: fe.Src, Alt: fe.Alt}
		switch e.Kind {
		case model.EndpointText:
			if strings.TrimSpace(e.Value) == "" {
				return c, errors.New("text endpoint without value")
			}
		case model.EndpointImage:
			if e.Src == "" {
				return c, errors.New("image endpoint without src")
			}
		default:
			return c, fmt.Errorf("unknown endpoint type %q", fe.Type)
		}
		c.Endpoints = append(c.Endpoints, e)
	}

	if c.Steps() == 0 {
		return c, errors.New("need at least two endpoints")
	}
	if len(fc.Answers) != c.Steps() {
		return c, fmt.Errorf("have %d answer lists for %d links", len(fc.Answers), c.Steps())
	}
	for i, answers := range fc.Answers {
		if len(answers) == 0 {
			return c, fmt.Errorf("link %d has no answers", i)
		}
	}
	c.Answers = fc.Answers
	return c, nil
}

// Len returns the number of chains in the rotation
func (c *Content) Len() int {
	return len(c.chains)
}

// ChainFor returns the chain scheduled for the UTC day containing t
func (c *Content) ChainFor(t time.Time) *model.Chain {
	idx := model.DayIndex(t) % int64(len(c.chains))
	if idx < 0 {
		idx += int64(len(c.chains))
	}
	return &c.chains[idx]
}
