package appliances

import "errors"

// Placeholder is the option label every category offers for "nothing selected".
// It always resolves to 0W.
const Placeholder = "None"

// Option is a selectable appliance variant and its rated unit wattage.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Watts int    `json:"watts" yaml:"watts"`
}

// Category groups the options offered for one kind of appliance (e.g. "fans").
type Category struct {
	// Key is the unique identifier used by selections (e.g. "fans", "ledBulbs").
	Key string `json:"key" yaml:"key"`
	// Name is the human-readable heading.
	Name string `json:"name" yaml:"name"`
	// Options in display order. The placeholder is added when missing.
	Options []Option `json:"options" yaml:"options"`
}

// Watts returns the unit wattage for label. Unknown labels report false.
func (c Category) Watts(label string) (int, bool) {
	if label == Placeholder {
		return 0, true
	}
	for _, o := range c.Options {
		if o.Label == label {
			return o.Watts, true
		}
	}
	return 0, false
}

// Common errors shared by catalog loaders.
var (
	ErrEmptyKey      = errors.New("appliances: category key is empty")
	ErrNegativeWatts = errors.New("appliances: option wattage is negative")
)

func (c Category) validate() error {
	if c.Key == "" {
		return ErrEmptyKey
	}
	for _, o := range c.Options {
		if o.Watts < 0 {
			return ErrNegativeWatts
		}
	}
	return nil
}
