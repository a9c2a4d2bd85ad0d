package options

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// OutputOptions
type OutputOptions struct {
	Format string
}

func AddOutputArg(cmd *cobra.Command, o *OutputOptions) {
	cmd.PersistentFlags().StringVarP(&o.Format, "output", "o", "text",
		"Output format. One of 'text', 'json' or 'yaml'.")
}

func (o *OutputOptions) Validate() error {
	switch o.Format {
	case "", "text", "json", "yaml":
		return nil
	}
	return fmt.Errorf("unknown output format %q", o.Format)
}

// HandleError prints err in the structured format, if one was asked for,
// and swallows it. Text output returns err unchanged.
func (o *OutputOptions) HandleError(err error) error {
	if err == nil {
		return nil
	}
	out := map[string]string{
		"error": err.Error(),
	}
	switch o.Format {
	case "json":
		b, merr := json.Marshal(out)
		if merr != nil {
			return merr
		}
		_, _ = fmt.Fprintln(color.Output, string(b))
		return nil
	case "yaml":
		b, merr := yaml.Marshal(out)
		if merr != nil {
			return merr
		}
		_, _ = fmt.Fprint(color.Output, string(b))
		return nil
	}
	return err
}
