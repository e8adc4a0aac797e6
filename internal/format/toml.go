package format

import (
	"github.com/pelletier/go-toml/v2"
)

func tomlMarshal(obj any) ([]byte, error) {
	return toml.Marshal(obj)
}

func tomlUnmarshal(in []byte) (any, error) {
	var obj any

	err := toml.Unmarshal(in, &obj)
	if err != nil {
		return nil, err
	}

	return obj, nil
}
