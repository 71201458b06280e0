package recurrence

import (
	"encoding/json"
	"fmt"
)

// Interval is the closed set of recurrence kinds a chore can have.
type Interval int

const (
	Daily Interval = iota
	Weekly
	Monthly
	Yearly
	Custom
)

var intervalNames = map[Interval]string{
	Daily:   "daily",
	Weekly:  "weekly",
	Monthly: "monthly",
	Yearly:  "yearly",
	Custom:  "custom",
}

var intervalFromName = map[string]Interval{
	"daily":   Daily,
	"weekly":  Weekly,
	"monthly": Monthly,
	"yearly":  Yearly,
	"custom":  Custom,
}

// Parse converts a lowercase interval name ("daily", "weekly", ...) to an
// Interval. Unknown names are an error.
func Parse(name string) (Interval, error) {
	iv, ok := intervalFromName[name]
	if !ok {
		return 0, fmt.Errorf("unknown interval: %q", name)
	}
	return iv, nil
}

func (i Interval) String() string {
	if name, ok := intervalNames[i]; ok {
		return name
	}
	return fmt.Sprintf("Interval(%d)", int(i))
}

// Valid reports whether i is one of the defined interval kinds.
func (i Interval) Valid() bool {
	_, ok := intervalNames[i]
	return ok
}

// UsesValue reports whether the interval value is meaningful for this kind.
// Daily and weekly chores always repeat at their fixed cadence.
func (i Interval) UsesValue() bool {
	switch i {
	case Monthly, Yearly, Custom:
		return true
	}
	return false
}

func (i Interval) MarshalJSON() ([]byte, error) {
	name, ok := intervalNames[i]
	if !ok {
		return nil, fmt.Errorf("marshal interval: invalid value %d", int(i))
	}
	return json.Marshal(name)
}

func (i *Interval) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	iv, err := Parse(name)
	if err != nil {
		return err
	}
	*i = iv
	return nil
}
