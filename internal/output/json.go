package output

import (
	"encoding/json"
	"io"

	"github.com/spiffcs/ghaudit/internal/model"
)

// JSONFormatter writes the response in its wire shape.
type JSONFormatter struct {
	Pretty bool
}

// Format outputs the response as JSON
func (f *JSONFormatter) Format(resp *model.Response, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(resp)
}
