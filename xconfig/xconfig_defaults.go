package xconfig

import (
	"fmt"
	"reflect"
	"strconv"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

func applyDefaultTags(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanSet() {
			continue
		}

		if tag := fieldType.Tag.Get("default"); tag != "" && field.IsZero() {
			if err := setFromString(field, tag); err != nil {
				return fmt.Errorf("field %s: %w", fieldType.Name, err)
			}
		}

		if field.Kind() == reflect.Struct {
			if err := applyDefaultTags(field); err != nil {
				return err
			}
		}
	}

	return nil
}

type defaulter interface {
	Default()
}

// callDefaultMethods calls Default on the struct first, then on its nested
// structs, so a parent's Default cannot clobber a child's.
func callDefaultMethods(v reflect.Value) {
	if v.CanAddr() {
		if d, ok := v.Addr().Interface().(defaulter); ok {
			d.Default()
		}
	}

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if field.Kind() == reflect.Struct && field.CanSet() {
			callDefaultMethods(field)
		}
	}
}

func setFromString(field reflect.Value, value string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		if field.OverflowInt(n) {
			return fmt.Errorf("integer %q overflows %s", value, field.Type())
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid unsigned integer %q", value)
		}
		if field.OverflowUint(n) {
			return fmt.Errorf("unsigned integer %q overflows %s", value, field.Type())
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float %q", value)
		}
		field.SetFloat(f)
	default:
		return fmt.Errorf("unsupported kind %s", field.Kind())
	}

	return nil
}
