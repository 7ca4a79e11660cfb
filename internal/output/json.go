package output

import (
	"github.com/goccy/go-json"

	"github.com/socialgate/socialgate/internal/core"
	"github.com/socialgate/socialgate/internal/core/engine"
)

// JSONFormatter renders results exactly as the HTTP API would.
type JSONFormatter struct {
	Indent bool
}

func (f *JSONFormatter) FormatEnvelope(env *core.Envelope) (string, error) {
	if env == nil {
		return "", nil
	}
	return f.marshal(env)
}

func (f *JSONFormatter) FormatPlatforms(infos []engine.PlatformInfo) (string, error) {
	if infos == nil {
		infos = []engine.PlatformInfo{}
	}
	return f.marshal(infos)
}

func (f *JSONFormatter) marshal(v any) (string, error) {
	var (
		data []byte
		err  error
	)
	if f.Indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
