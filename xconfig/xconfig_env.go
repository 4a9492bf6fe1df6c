package xconfig

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"unicode"
)

func camelToSnake(s string) string {
	var result strings.Builder
	runes := []rune(s)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevUpper := unicode.IsUpper(runes[i-1])
			nextLower := i < len(runes)-1 && unicode.IsLower(runes[i+1])

			if !prevUpper || nextLower {
				result.WriteByte('_')
			}
		}
		result.WriteRune(unicode.ToLower(r))
	}
	return result.String()
}

// fieldName resolves the env key segment: env tag, then yaml, then json,
// then the snake_cased Go name. "-" skips the field.
func fieldName(field reflect.StructField) string {
	for _, key := range []string{"env", "yaml", "json"} {
		tag := field.Tag.Get(key)
		if tag == "-" {
			return ""
		}
		if name := strings.Split(tag, ",")[0]; name != "" {
			return name
		}
	}
	return camelToSnake(field.Name)
}

func loadFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanSet() {
			continue
		}

		name := fieldName(fieldType)
		if name == "" {
			continue
		}

		key := strings.ToUpper(prefix + "_" + name)

		if field.Kind() == reflect.Struct && field.Type() != durationType {
			if err := loadFromEnv(field, key); err != nil {
				return err
			}
			continue
		}

		value, ok := os.LookupEnv(key)
		if !ok || value == "" {
			continue
		}

		if err := setFromString(field, value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	return nil
}
