package options

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const (
	layoutISO      = "2006-1-2"
	layoutISOShort = "1/2"
	layoutDate     = "2006-01-02"
)

// OnOptions name a day and a time of day.
type OnOptions struct {
	OnString string
	AtString string
}

func AddOnArgs(cmd *cobra.Command, o *OnOptions, what string) {
	cmd.Flags().StringVar(&o.OnString, "on", "",
		fmt.Sprintf(`Day of the %s, example: --on="2024-2-28" or --on="2/28".`, what))
	cmd.Flags().StringVar(&o.AtString, "at", "",
		fmt.Sprintf(`Time of day of the %s, example: --at="07:30".`, what))
}

// Date returns the --on day as YYYY-MM-DD, or "" when unset. A short
// month/day form means this year, or next year if that day has passed.
func (o *OnOptions) Date(now time.Time) (string, error) {
	if o.OnString == "" {
		return "", nil
	}
	t, err := time.Parse(layoutISO, o.OnString)
	if err != nil {
		t, err = time.Parse(layoutISOShort, o.OnString)
		if err != nil {
			return "", fmt.Errorf("invalid --on %q, expected YYYY-M-D or M/D", o.OnString)
		}
		t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if t.Before(today) {
			t = t.AddDate(1, 0, 0)
		}
	}
	return t.Format(layoutDate), nil
}

// Clock returns the --at time of day as HH:MM, or "" when unset.
func (o *OnOptions) Clock() (string, error) {
	if o.AtString == "" {
		return "", nil
	}
	t, err := time.Parse("15:04", o.AtString)
	if err != nil {
		return "", fmt.Errorf("invalid --at %q, expected HH:MM", o.AtString)
	}
	return t.Format("15:04"), nil
}
