package router

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/mitchellh/mapstructure"
)

func bind(req *http.Request, method string, out any) error {
	if method == http.MethodGet ||
		strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/form-data") {
		return bindQuery(req, out)
	}

	err := json.NewDecoder(req.Body).Decode(out)
	if err == io.EOF {
		return nil
	}

	return err
}

func bindQuery(req *http.Request, out any) error {
	values := map[string]any{}
	for key, value := range req.URL.Query() {
		if len(value) == 1 {
			values[key] = value[0]
		} else {
			values[key] = value
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(values)
}
