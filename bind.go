package cinit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	reflect "github.com/goccy/go-reflect"
	"github.com/oarkflow/date"
)

// Unmarshal decodes a FieldMap into the struct pointed to by v using the
// default symbol table. Struct fields resolve through the json tag,
// falling back to the Go field name; fields absent from the map keep their
// zero value.
func Unmarshal(fields FieldMap, v any) error {
	return UnmarshalWith(fields, v, DefaultEnv())
}

// UnmarshalWith decodes a FieldMap resolving identifiers through env.
// Integer, unsigned and bool destinations run the raw value through the
// expression evaluator; strings through DecodeString; string and integer
// slices through DecodeBraceList or DecodeMacroArgs depending on the raw
// value's shape; EntryTuple slices through DecodeEntryList; time.Time
// through date parsing of the decoded string.
func UnmarshalWith(fields FieldMap, v any, env *Environment) error {
	destVal := reflect.ValueOf(v)
	if destVal.Kind() != reflect.Ptr || destVal.IsNil() {
		return errors.New("v must be a non-nil pointer")
	}
	dest := destVal.Elem()
	if dest.Kind() != reflect.Struct {
		return errors.New("v must point to a struct")
	}
	if env == nil {
		env = DefaultEnv()
	}
	destType := dest.Type()
	for i := 0; i < dest.NumField(); i++ {
		field := destType.Field(i)
		if field.PkgPath != "" {
			continue
		}
		tag := field.Tag.Get("json")
		fieldName := field.Name
		if tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] != "" {
				fieldName = parts[0]
			}
		}
		raw, exists := fields[fieldName]
		if !exists {
			continue
		}
		if err := assignRaw(raw, dest.Field(i), env); err != nil {
			return fmt.Errorf("field %s: %v", field.Name, err)
		}
	}
	return nil
}

func assignRaw(raw string, dest reflect.Value, env *Environment) error {
	if dest.Kind() == reflect.Ptr {
		if dest.IsNil() {
			dest.Set(reflect.New(dest.Type().Elem()))
		}
		return assignRaw(raw, dest.Elem(), env)
	}
	if dest.Kind() == reflect.Struct && dest.Type() == reflect.TypeOf(time.Time{}) {
		t, err := date.Parse(DecodeString(raw))
		if err != nil {
			return fmt.Errorf("cannot parse time: %v", err)
		}
		dest.Set(reflect.ValueOf(t))
		return nil
	}
	switch dest.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := EvaluateWith(raw, env)
		if err != nil {
			return err
		}
		dest.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := EvaluateWith(raw, env)
		if err != nil {
			return err
		}
		dest.SetUint(uint64(n))
	case reflect.Bool:
		n, err := EvaluateWith(raw, env)
		if err != nil {
			return err
		}
		dest.SetBool(n != 0)
	case reflect.String:
		dest.SetString(DecodeString(raw))
	case reflect.Slice:
		return assignSlice(raw, dest, env)
	default:
		return fmt.Errorf("unsupported destination type: %s", dest.Kind())
	}
	return nil
}

func assignSlice(raw string, dest reflect.Value, env *Environment) error {
	elem := dest.Type().Elem()
	if elem == reflect.TypeOf(EntryTuple{}) {
		entries, err := DecodeEntryList(raw)
		if err != nil {
			return err
		}
		slice := reflect.MakeSlice(dest.Type(), len(entries), len(entries))
		for i, entry := range entries {
			slice.Index(i).Set(reflect.ValueOf(entry))
		}
		dest.Set(slice)
		return nil
	}

	var parts []string
	var err error
	if strings.HasPrefix(strings.TrimSpace(raw), "{") {
		parts, err = DecodeBraceList(raw)
	} else {
		parts, err = DecodeMacroArgs(raw)
	}
	if err != nil {
		return err
	}

	switch elem.Kind() {
	case reflect.String:
		slice := reflect.MakeSlice(dest.Type(), len(parts), len(parts))
		for i, part := range parts {
			slice.Index(i).SetString(part)
		}
		dest.Set(slice)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		slice := reflect.MakeSlice(dest.Type(), len(parts), len(parts))
		for i, part := range parts {
			n, err := EvaluateWith(part, env)
			if err != nil {
				return fmt.Errorf("element %d: %v", i, err)
			}
			slice.Index(i).SetInt(n)
		}
		dest.Set(slice)
	default:
		return fmt.Errorf("unsupported slice element type: %s", elem.Kind())
	}
	return nil
}
