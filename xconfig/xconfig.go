// Package xconfig loads configuration structs from defaults, files and the
// environment, in that order of precedence (later sources win).
//
// Sources:
//   - `default:"..."` struct tags on zero-valued fields
//   - Default() methods on pointer receivers, called on every nested struct
//   - yaml (.yaml, .yml) and json (.json) files; missing files are skipped
//   - environment variables PREFIX_FIELD, nested as PREFIX_PARENT_FIELD
package xconfig

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrInvalidTarget is returned when Load is not given a non-nil struct pointer.
var ErrInvalidTarget = errors.New("xconfig: config must be a non-nil pointer to a struct")

type options struct {
	files     []string
	envPrefix string
	strict    bool
}

type Option func(*options)

// WithFiles loads the given files in order.
func WithFiles(filenames ...string) Option {
	return func(o *options) {
		o.files = append(o.files, filenames...)
	}
}

// WithEnv enables environment overrides under prefix.
func WithEnv(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithStrict rejects unknown keys in files.
func WithStrict() Option {
	return func(o *options) {
		o.strict = true
	}
}

func Load(config any, opts ...Option) error {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	elem, err := validateConfigPointer(config)
	if err != nil {
		return err
	}

	if err := applyDefaultTags(elem); err != nil {
		return fmt.Errorf("failed to apply default tags: %w", err)
	}

	callDefaultMethods(elem)

	for _, filename := range o.files {
		if err := loadFromFile(config, filename, o.strict); err != nil {
			return fmt.Errorf("failed to load file %s: %w", filename, err)
		}
	}

	if o.envPrefix != "" {
		if err := loadFromEnv(elem, o.envPrefix); err != nil {
			return fmt.Errorf("failed to load from environment: %w", err)
		}
	}

	return nil
}

func validateConfigPointer(config any) (reflect.Value, error) {
	v := reflect.ValueOf(config)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, ErrInvalidTarget
	}
	return v.Elem(), nil
}
