package config

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/mold/v4/modifiers"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// Config holds the settings of a run. Values come from the YAML file named by
// CONFIG_FILE, then BOOKSHELF_* environment variables, then command-line flags.
type Config struct {
	CoversDir         string `koanf:"covers_dir" default:"covers" mod:"trim"`
	OutputPath        string `koanf:"output_path" default:"books_metadata.html" mod:"trim"`
	Format            string `koanf:"format" mod:"trim,lcase" validate:"omitempty,oneof=html markdown md json"` // empty derives it from OutputPath
	SortBy            string `koanf:"sort_by" mod:"trim,lcase" validate:"omitempty,oneof=title author series genre"`
	Reverse           bool   `koanf:"reverse"`
	BibliographicSort bool   `koanf:"bibliographic_sort"`
}

const (
	configFileENV = "CONFIG_FILE"
	envPrefix     = "BOOKSHELF_"
)

// New loads the configuration from the config file and the environment.
func New() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(configFileENV); path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, errors.Wrapf(err, "load config file %s", path)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.WithStack(err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize trims values, fills defaults and validates the result. Call it
// again after applying flag overrides.
func (c *Config) Normalize() error {
	if err := modifiers.New().Struct(context.Background(), c); err != nil {
		return errors.WithStack(err)
	}

	if err := defaults.Set(c); err != nil {
		return errors.WithStack(err)
	}

	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("koanf")
	})
	if err := validate.Struct(c); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			return errors.New(formatValidationError(errs[0]))
		}
		return errors.WithStack(err)
	}
	return nil
}

func formatValidationError(fe validator.FieldError) string {
	key := fe.Field()
	envName := envPrefix + strings.ToUpper(key)
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("invalid config: %s (%s) must be one of [%s], got %q", key, envName, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("invalid config: %s (%s) failed %s validation", key, envName, fe.Tag())
	}
}
