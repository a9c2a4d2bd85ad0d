package printers

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Formats accepted by Encode.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Encode writes v to w as JSON or YAML.
func Encode(w io.Writer, format string, v interface{}) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(toYAML(v)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("printers: unknown format %q", format)
	}
}

// toYAML round-trips v through JSON so YAML keys follow the json tags.
func toYAML(v interface{}) interface{} {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

// Printer sends a value either to Encode or to a PrettyPrint.
type Printer struct {
	Format string
	Pretty PrettyPrint
}

// Structured reports whether output is JSON or YAML.
func (p *Printer) Structured() bool {
	return p.Format == FormatJSON || p.Format == FormatYAML
}

// Print encodes v for structured formats and otherwise calls pretty.
func (p *Printer) Print(v interface{}, pretty func(pp *PrettyPrint)) error {
	if p.Structured() {
		return Encode(p.Pretty.Writer(), p.Format, v)
	}
	if p.Format != "" && p.Format != FormatText {
		return fmt.Errorf("printers: unknown format %q", p.Format)
	}
	pretty(&p.Pretty)
	return nil
}
