// Package config holds the runtime settings of the quoting backend. Settings
// are bound to flags on the PocketBase root command and fall back to
// QUOTEDESK_* environment variables.
package config

import (
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
)

const envPrefix = "QUOTEDESK_"

// Settings are the tunables shared by the handlers, the seed step and the
// calc commands.
type Settings struct {
	QuotePrefix               string
	CurrencySymbol            string
	SeedDemoData              bool
	DefaultOverheadPercent    float64
	DefaultContingencyPercent float64
}

// Defaults returns the settings used when neither a flag nor an environment
// variable is given.
func Defaults() Settings {
	return Settings{
		QuotePrefix:               "Q",
		CurrencySymbol:            "$",
		SeedDemoData:              true,
		DefaultOverheadPercent:    10,
		DefaultContingencyPercent: 5,
	}
}

// FromEnv returns Defaults overridden by any QUOTEDESK_* variables that are
// set. Values that cannot be parsed keep their default.
func FromEnv() Settings {
	s := Defaults()
	if v, ok := lookupEnv("QUOTE_PREFIX"); ok {
		s.QuotePrefix = v
	}
	if v, ok := lookupEnv("CURRENCY_SYMBOL"); ok {
		s.CurrencySymbol = v
	}
	if v, ok := lookupEnv("SEED_DEMO_DATA"); ok {
		if b, err := cast.ToBoolE(v); err == nil {
			s.SeedDemoData = b
		}
	}
	if v, ok := lookupEnv("DEFAULT_OVERHEAD_PERCENT"); ok {
		if f, err := cast.ToFloat64E(v); err == nil {
			s.DefaultOverheadPercent = f
		}
	}
	if v, ok := lookupEnv("DEFAULT_CONTINGENCY_PERCENT"); ok {
		if f, err := cast.ToFloat64E(v); err == nil {
			s.DefaultContingencyPercent = f
		}
	}
	return s
}

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// RegisterFlags binds the settings to persistent flags. Environment values
// become the flag defaults, so an explicit flag always wins.
func RegisterFlags(fs *pflag.FlagSet) *Settings {
	env := FromEnv()
	s := &Settings{}

	fs.StringVar(&s.QuotePrefix, "quotePrefix", env.QuotePrefix,
		"prefix of generated quote numbers, e.g. Q-MSP-26-001")
	fs.StringVar(&s.CurrencySymbol, "currency", env.CurrencySymbol,
		"currency symbol used in exports and the quote summary")
	fs.BoolVar(&s.SeedDemoData, "seed", env.SeedDemoData,
		"insert the demo catalog when the labor catalog is empty")
	fs.Float64Var(&s.DefaultOverheadPercent, "defaultOverhead", env.DefaultOverheadPercent,
		"overhead percent applied to new blueprints that do not set one")
	fs.Float64Var(&s.DefaultContingencyPercent, "defaultContingency", env.DefaultContingencyPercent,
		"contingency percent applied to new blueprints that do not set one")

	return s
}

// Validate checks the settings after flags were parsed.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.QuotePrefix, validation.Required, validation.Length(1, 10)),
		validation.Field(&s.CurrencySymbol, validation.Required, validation.Length(1, 5)),
		validation.Field(&s.DefaultOverheadPercent, validation.Min(0.0)),
		validation.Field(&s.DefaultContingencyPercent, validation.Min(0.0)),
	)
}
