package common

import (
	"encoding/json"
	"fmt"
	"time"

	"fieldforce.com/fieldforce/utils"
)

// DateOnly is a calendar date in yyyy-MM-dd, bindable from JSON and query strings.
type DateOnly struct {
	time.Time
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.UnmarshalParam(s)
}

// UnmarshalParam lets gin bind ?date= query parameters.
func (d *DateOnly) UnmarshalParam(s string) error {
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(utils.DateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date format: %v", err)
	}
	d.Time = t
	return nil
}

func (d DateOnly) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.String())
}

func (d DateOnly) String() string {
	if d.Time.IsZero() {
		return ""
	}
	return d.Format(utils.DateLayout)
}
