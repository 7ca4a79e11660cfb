package output

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/socialgate/socialgate/internal/core"
	"github.com/socialgate/socialgate/internal/core/engine"
)

// YAMLFormatter renders results as YAML with the API's field names.
type YAMLFormatter struct{}

func (f *YAMLFormatter) FormatEnvelope(env *core.Envelope) (string, error) {
	if env == nil {
		return "", nil
	}
	return marshalYAML(env)
}

func (f *YAMLFormatter) FormatPlatforms(infos []engine.PlatformInfo) (string, error) {
	if infos == nil {
		infos = []engine.PlatformInfo{}
	}
	return marshalYAML(infos)
}

func marshalYAML(v any) (string, error) {
	doc, err := generic(v)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}
