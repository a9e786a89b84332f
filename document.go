package surrealengine

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// Model is implemented by document structs. TableName must be callable on
// the zero value, so implement it on the value receiver without touching
// fields.
type Model interface {
	TableName() string
}

// MetaProvider lets a model override the metadata that would otherwise be
// derived by reflection, for table-level options such as changefeeds and
// permissions.
type MetaProvider interface {
	Model
	DocumentMeta() Meta
}

// Meta describes a model for schema generation.
type Meta struct {
	Table       string
	Schemafull  bool
	Changefeed  time.Duration
	Permissions map[string]string
	Fields      []FieldDef
	Indexes     []IndexDef
}

// FieldDef describes a DEFINE FIELD statement.
type FieldDef struct {
	Name     string
	Type     string
	Default  string
	Value    string
	Assert   string
	Readonly bool
	Flexible bool
}

// IndexDef describes a DEFINE INDEX statement.
type IndexDef struct {
	Name     string
	Fields   []string
	Unique   bool
	Analyzer string
}

// MetaOf derives a model's metadata. A MetaProvider's DocumentMeta is used
// as the base; fields and indexes left empty there are filled in by
// reflecting over the struct's `json` and `surreal` tags.
func MetaOf(m Model) (*Meta, error) {
	var meta Meta
	if mp, ok := m.(MetaProvider); ok {
		meta = mp.DocumentMeta()
	}
	if meta.Table == "" {
		meta.Table = m.TableName()
	}

	if len(meta.Fields) == 0 {
		fields, indexes, err := reflectFields(m, meta.Table)
		if err != nil {
			return nil, err
		}
		meta.Fields = fields
		meta.Indexes = append(meta.Indexes, indexes...)
	}

	return &meta, nil
}

func reflectFields(m Model, table string) ([]FieldDef, []IndexDef, error) {
	t := reflect.TypeOf(m)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("surrealengine: model %T is not a struct", m)
	}

	var fields []FieldDef
	var indexes []IndexDef

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		name := jsonFieldName(sf)
		if name == "" || name == "id" {
			// The id field is assigned by the database, not defined.
			continue
		}

		def := FieldDef{Name: name, Type: surrealTypeOf(sf.Type)}
		var indexed, unique bool
		var analyzer string

		if tag, ok := sf.Tag.Lookup("surreal"); ok {
			if tag == "-" {
				continue
			}
			indexed, unique, analyzer = applyFieldTag(&def, tag)
		}

		fields = append(fields, def)

		if indexed || unique || analyzer != "" {
			indexes = append(indexes, IndexDef{
				Name:     fmt.Sprintf("%s_%s_idx", table, strings.ReplaceAll(name, ".", "_")),
				Fields:   []string{name},
				Unique:   unique,
				Analyzer: analyzer,
			})
		}
	}

	return fields, indexes, nil
}

// applyFieldTag parses a `surreal` tag of semicolon-separated options, e.g.
//
//	surreal:"type:string;assert:string::is::email($value);unique"
func applyFieldTag(def *FieldDef, tag string) (indexed, unique bool, analyzer string) {
	for _, part := range strings.Split(tag, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value := part, ""
		if i := strings.Index(part, ":"); i >= 0 {
			key, value = part[:i], part[i+1:]
		}

		switch key {
		case "type":
			def.Type = value
		case "default":
			def.Default = value
		case "value":
			def.Value = value
		case "assert":
			def.Assert = value
		case "readonly":
			def.Readonly = true
		case "flexible":
			def.Flexible = true
		case "index":
			indexed = true
		case "unique":
			unique = true
		case "search":
			analyzer = value
		}
	}
	return indexed, unique, analyzer
}

func jsonFieldName(sf reflect.StructField) string {
	tag, ok := sf.Tag.Lookup("json")
	if !ok {
		return sf.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return sf.Name
	}
	return name
}

// surrealTypeOf infers a SurrealQL field type from a Go type. Pointers map
// to option<...> of the element type.
func surrealTypeOf(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		return "option<" + surrealTypeOf(t.Elem()) + ">"
	}

	switch t {
	case reflect.TypeOf(time.Time{}), reflect.TypeOf(models.CustomDateTime{}):
		return "datetime"
	case reflect.TypeOf(models.CustomDuration{}), reflect.TypeOf(time.Duration(0)):
		return "duration"
	case reflect.TypeOf(models.RecordID{}):
		return "record"
	case reflect.TypeOf(models.UUID{}):
		return "uuid"
	}

	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "int"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	default:
		return "any"
	}
}

// RecordIDOf extracts the record ID from a document's id field. It returns
// false when the field is absent or unset.
func RecordIDOf(doc any) (*models.RecordID, bool) {
	v := reflect.ValueOf(doc)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, false
	}

	fv, ok := findIDField(v)
	if !ok {
		return nil, false
	}

	switch id := fv.Interface().(type) {
	case models.RecordID:
		if id.Table == "" {
			return nil, false
		}
		return &id, true
	case *models.RecordID:
		if id == nil {
			return nil, false
		}
		return id, true
	}
	return nil, false
}

// SetRecordID assigns a record ID to a document's id field. The document
// must be a struct pointer.
func SetRecordID(doc any, id models.RecordID) error {
	v := reflect.ValueOf(doc)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return fmt.Errorf("surrealengine: SetRecordID requires a struct pointer, got %T", doc)
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("surrealengine: SetRecordID requires a struct pointer, got %T", doc)
	}

	fv, ok := findIDField(v)
	if !ok {
		return fmt.Errorf("surrealengine: %T has no id field", doc)
	}

	switch fv.Type() {
	case reflect.TypeOf(models.RecordID{}):
		fv.Set(reflect.ValueOf(id))
	case reflect.TypeOf(&models.RecordID{}):
		fv.Set(reflect.ValueOf(&id))
	default:
		return fmt.Errorf("surrealengine: id field of %T is not a RecordID", doc)
	}
	return nil
}

func findIDField(v reflect.Value) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if jsonFieldName(sf) == "id" {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// tableName returns the table for a model type. Models must implement
// TableName on the value receiver so this works on the zero value.
func tableName[T Model]() string {
	var zero T
	return zero.TableName()
}
