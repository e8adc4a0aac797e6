package format

import "encoding/json"

func jsonMarshal(obj any) ([]byte, error) {
	out, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}

	return append(out, '\n'), nil
}

func jsonMarshalPretty(obj any) ([]byte, error) {
	out, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(out, '\n'), nil
}

func jsonUnmarshal(in []byte) (any, error) {
	var obj any

	err := json.Unmarshal(in, &obj)
	if err != nil {
		return nil, err
	}

	return obj, nil
}
