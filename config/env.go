package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const envPrefix = "SPRINGFOLLOW_"

// LoadEnv loads the given .env files (missing files are ignored) and applies
// SPRINGFOLLOW_* overrides from the process environment to the globals.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return applyEnv(os.LookupEnv)
}

func applyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	f32 := func(key string, dst *float32) {
		if v, ok := lookup(envPrefix + key); ok {
			n, err := strconv.ParseFloat(v, 32)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = float32(n)
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(envPrefix + key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	str := func(key string, dst *string) {
		if v, ok := lookup(envPrefix + key); ok {
			*dst = v
		}
	}

	f32("FREQUENCY", &Follow.Frequency)
	f32("DAMPING", &Follow.Damping)
	f32("RESPONSE", &Follow.Response)
	str("MISSING_POLICY", &Follow.MissingTargetPolicy)
	integer("WORKERS", &Follow.Workers)

	str("SERVER_NAME", &Server.Name)
	integer("TICK_RATE", &Server.TickRate)
	str("API_ADDR", &Server.APIAddr)
	if v, ok := lookup(envPrefix + "PORT"); ok {
		n, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sPORT: %w", envPrefix, err))
		} else {
			Server.Port = uint(n)
		}
	}

	str("APP_NAME", &Persistence.AppName)

	if Follow.MissingTargetPolicy != PolicyFreeze && Follow.MissingTargetPolicy != PolicyDetach {
		errs = append(errs, fmt.Errorf("unknown missing target policy %q", Follow.MissingTargetPolicy))
	}
	return errors.Join(errs...)
}
