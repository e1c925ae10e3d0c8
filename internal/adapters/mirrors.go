package adapters

import (
	"fmt"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"purl2src/internal/types"
)

type mirrorsFile struct {
	Mirrors map[string]string `yaml:"mirrors"`
}

// LoadMirrors reads a per-ecosystem base URL override file:
//
//	mirrors:
//	  npm: https://registry.internal.example.com
//	  pypi: https://pypi.internal.example.com/pypi
//
// Unknown ecosystem keys are rejected so typos do not silently leave
// an ecosystem on its public registry.
func LoadMirrors(path string) (map[types.Ecosystem]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read mirrors file").
			WithCause(err)
	}
	var file mirrorsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse mirrors file").
			WithCause(err)
	}
	mirrors := make(map[types.Ecosystem]string, len(file.Mirrors))
	for key, base := range file.Mirrors {
		eco, ok := types.ParseEcosystem(key)
		if !ok {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("unknown ecosystem in mirrors file: %s", key))
		}
		mirrors[eco] = base
	}
	return mirrors, nil
}
