package mongodb

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
	"unicode"

	"go.mongodb.org/mongo-driver/bson/bsoncodec"
)

// NamingStrategy derives document field names from Go field names.
type NamingStrategy string

const (
	LowerCase NamingStrategy = "lower_case"
	SnakeCase NamingStrategy = "snake_case"
	CamelCase NamingStrategy = "camel_case"
)

// FieldName maps a Go field name. Fields named ID or Id map to "_id".
func (n NamingStrategy) FieldName(name string) string {
	if name == "ID" || name == "Id" {
		return "_id"
	}
	switch n {
	case SnakeCase:
		return snakeCase(name)
	case CamelCase:
		return lowerFirst(name)
	default:
		return strings.ToLower(name)
	}
}

func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && !unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevLower || (nextLower && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// lowerFirst lowercases a leading run of capitals: "URLPath" -> "urlPath".
func lowerFirst(s string) string {
	runes := []rune(s)
	for i := range runes {
		if !unicode.IsUpper(runes[i]) {
			break
		}
		if i > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
			break
		}
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

// TagParser returns a bson struct tag parser that names untagged fields
// with the strategy. Explicit bson names and flags are kept.
func (n NamingStrategy) TagParser() bsoncodec.StructTagParser {
	return bsoncodec.StructTagParserFunc(func(sf reflect.StructField) (bsoncodec.StructTags, error) {
		st, err := bsoncodec.DefaultStructTagParser(sf)
		if err != nil || st.Skip {
			return st, err
		}
		if bsonName(sf) == "" {
			st.Name = n.FieldName(sf.Name)
		}
		return st, nil
	})
}

func bsonName(sf reflect.StructField) string {
	tag, ok := sf.Tag.Lookup("bson")
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}

// Collectioner lets an entity choose its collection name.
type Collectioner interface {
	CollectionName() string
}

// Aliaser lets an entity choose the type alias written by the converter.
type Aliaser interface {
	TypeAlias() string
}

// IndexDefinition is a single-field index declared with a `mongo:"index"`
// or `mongo:"unique"` struct tag.
type IndexDefinition struct {
	Field  string `json:"field" yaml:"field"`
	Unique bool   `json:"unique" yaml:"unique"`
}

// PersistentEntity is the mapping metadata of one struct type.
type PersistentEntity struct {
	Type       reflect.Type
	Collection string
	Alias      string
	Indexes    []IndexDefinition
}

// ManagedTypes is the set of entity types known up front.
type ManagedTypes struct {
	types []reflect.Type
}

func NewManagedTypes(types ...reflect.Type) *ManagedTypes {
	m := &ManagedTypes{}
	m.Add(types...)
	return m
}

// Add registers struct types; pointers are dereferenced and duplicates dropped.
func (m *ManagedTypes) Add(types ...reflect.Type) {
	for _, t := range types {
		t = entityType(t)
		if t != nil && !slices.Contains(m.types, t) {
			m.types = append(m.types, t)
		}
	}
}

func (m *ManagedTypes) Types() []reflect.Type { return slices.Clone(m.types) }

func (m *ManagedTypes) Len() int { return len(m.types) }

// TypeOf returns the entity type of T.
func TypeOf[T any]() reflect.Type {
	return entityType(reflect.TypeOf((*T)(nil)).Elem())
}

func entityType(t reflect.Type) reflect.Type {
	for t != nil && (t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice || t.Kind() == reflect.Array) {
		t = t.Elem()
	}
	return t
}

// MappingContext builds and caches PersistentEntity metadata.
type MappingContext struct {
	naming            NamingStrategy
	autoIndexCreation bool
	conversions       *CustomConversions

	mu       sync.RWMutex
	entities map[reflect.Type]*PersistentEntity
	order    []reflect.Type
}

// NewMappingContext creates a context and builds the entities of managed.
func NewMappingContext(managed *ManagedTypes, conversions *CustomConversions, naming NamingStrategy, autoIndexCreation bool) (*MappingContext, error) {
	if naming == "" {
		naming = LowerCase
	}
	m := &MappingContext{
		naming:            naming,
		autoIndexCreation: autoIndexCreation,
		conversions:       conversions,
		entities:          make(map[reflect.Type]*PersistentEntity),
	}
	if managed != nil {
		for _, t := range managed.types {
			if _, err := m.Entity(t); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *MappingContext) NamingStrategy() NamingStrategy { return m.naming }

func (m *MappingContext) AutoIndexCreation() bool { return m.autoIndexCreation }

// Entity returns the metadata of t, building it on first use.
func (m *MappingContext) Entity(t reflect.Type) (*PersistentEntity, error) {
	t = entityType(t)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("mongodb: %v is not a struct entity", t)
	}
	if m.isSimpleType(t) {
		return nil, fmt.Errorf("mongodb: %v has a custom conversion and is not an entity", t)
	}

	m.mu.RLock()
	e, ok := m.entities[t]
	m.mu.RUnlock()
	if ok {
		return e, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entities[t]; ok {
		return e, nil
	}
	e = m.build(t)
	m.entities[t] = e
	m.order = append(m.order, t)
	return e, nil
}

// Entities returns the entities built so far in build order.
func (m *MappingContext) Entities() []*PersistentEntity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*PersistentEntity, len(m.order))
	for i, t := range m.order {
		out[i] = m.entities[t]
	}
	return out
}

func (m *MappingContext) isSimpleType(t reflect.Type) bool {
	if m.conversions == nil {
		return false
	}
	for _, c := range m.conversions.conversions {
		if c.Type == t {
			return true
		}
	}
	return false
}

func (m *MappingContext) build(t reflect.Type) *PersistentEntity {
	e := &PersistentEntity{
		Type:       t,
		Collection: lowerFirst(t.Name()),
		Alias:      t.PkgPath() + "." + t.Name(),
	}
	zero := reflect.New(t)
	if c, ok := zero.Interface().(Collectioner); ok {
		e.Collection = c.CollectionName()
	}
	if a, ok := zero.Interface().(Aliaser); ok {
		e.Alias = a.TypeAlias()
	}
	e.Indexes = m.indexes(t)
	return e
}

func (m *MappingContext) indexes(t reflect.Type) []IndexDefinition {
	var out []IndexDefinition
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("bson")
		if !sf.IsExported() || tag == "-" {
			continue
		}
		if _, flags, _ := strings.Cut(tag, ","); strings.Contains(flags, "inline") {
			if ft := entityType(sf.Type); ft.Kind() == reflect.Struct {
				out = append(out, m.indexes(ft)...)
			}
			continue
		}

		var indexed, unique bool
		for _, opt := range strings.Split(sf.Tag.Get("mongo"), ",") {
			switch strings.TrimSpace(opt) {
			case "index":
				indexed = true
			case "unique":
				unique = true
			}
		}
		if !indexed && !unique {
			continue
		}
		name := bsonName(sf)
		if name == "" {
			name = m.naming.FieldName(sf.Name)
		}
		out = append(out, IndexDefinition{Field: name, Unique: unique})
	}
	return out
}
