package mongodb

import (
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TypeKey is the document field holding the entity type alias.
const TypeKey = "_class"

// MappingConverter converts between entities and documents using the
// mapping context and the custom conversions.
type MappingConverter struct {
	mapping  *MappingContext
	registry *bsoncodec.Registry
	typeKey  string
}

// NewMappingConverter builds the converter registry. With nullTypeKey no
// type alias is written.
func NewMappingConverter(mapping *MappingContext, conversions *CustomConversions, nullTypeKey bool) (*MappingConverter, error) {
	if conversions == nil {
		var err error
		if conversions, err = NewCustomConversions(UUIDStandard); err != nil {
			return nil, err
		}
	}
	if mapping == nil {
		var err error
		if mapping, err = NewMappingContext(nil, conversions, LowerCase, false); err != nil {
			return nil, err
		}
	}

	reg := bson.NewRegistry()
	sc, err := bsoncodec.NewStructCodec(mapping.naming.TagParser())
	if err != nil {
		return nil, fmt.Errorf("mongodb: struct codec: %w", err)
	}
	reg.RegisterKindEncoder(reflect.Struct, sc)
	reg.RegisterKindDecoder(reflect.Struct, sc)
	conversions.Register(reg)

	c := &MappingConverter{mapping: mapping, registry: reg, typeKey: TypeKey}
	if nullTypeKey {
		c.typeKey = ""
	}
	return c, nil
}

func (c *MappingConverter) Registry() *bsoncodec.Registry { return c.registry }

func (c *MappingConverter) MappingContext() *MappingContext { return c.mapping }

// TypeKey returns the discriminator field, or "" when it is suppressed.
func (c *MappingConverter) TypeKey() string { return c.typeKey }

// Write converts v to a document. Struct entities get the type alias
// appended unless the type key is suppressed or already present; a struct
// that cannot be mapped to an entity is an error.
func (c *MappingConverter) Write(v any) (bson.D, error) {
	if doc, ok := v.(bson.D); ok {
		return doc, nil
	}
	data, err := bson.MarshalWithRegistry(c.registry, v)
	if err != nil {
		return nil, fmt.Errorf("mongodb: write %T: %w", v, err)
	}
	var doc bson.D
	if err := bson.UnmarshalWithRegistry(c.registry, data, &doc); err != nil {
		return nil, fmt.Errorf("mongodb: write %T: %w", v, err)
	}

	if c.typeKey == "" || !isStruct(v) {
		return doc, nil
	}
	entity, err := c.mapping.Entity(reflect.TypeOf(v))
	if err != nil {
		return nil, fmt.Errorf("mongodb: write %T: %w", v, err)
	}
	if _, found := lookup(doc, c.typeKey); !found {
		doc = append(doc, bson.E{Key: c.typeKey, Value: entity.Alias})
	}
	return doc, nil
}

// Read decodes a document into out.
func (c *MappingConverter) Read(data bson.Raw, out any) error {
	if err := bson.UnmarshalWithRegistry(c.registry, data, out); err != nil {
		return fmt.Errorf("mongodb: read %T: %w", out, err)
	}
	return nil
}

// Entity returns the mapping metadata of v's type.
func (c *MappingConverter) Entity(v any) (*PersistentEntity, error) {
	return c.mapping.Entity(reflect.TypeOf(v))
}

// setID stores id in the field of v that maps to _id, when v is a pointer
// to a struct and the types are compatible.
func (c *MappingConverter) setID(v any, id any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return
	}
	rv = rv.Elem()
	idv := reflect.ValueOf(id)
	for i := 0; i < rv.NumField(); i++ {
		sf := rv.Type().Field(i)
		if !sf.IsExported() {
			continue
		}
		name := bsonName(sf)
		if name == "" {
			name = c.mapping.naming.FieldName(sf.Name)
		}
		if name != "_id" {
			continue
		}
		if f := rv.Field(i); f.CanSet() && idv.IsValid() && idv.Type().AssignableTo(f.Type()) && f.IsZero() {
			f.Set(idv)
		}
		return
	}
}

func isStruct(v any) bool {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t != nil && t.Kind() == reflect.Struct
}

func lookup(doc bson.D, key string) (any, bool) {
	for _, e := range doc {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// idOf returns the _id of doc; zero object ids count as absent.
func idOf(doc bson.D) (any, bool) {
	id, ok := lookup(doc, "_id")
	if !ok || id == nil {
		return nil, false
	}
	if oid, isOID := id.(primitive.ObjectID); isOID && oid.IsZero() {
		return nil, false
	}
	return id, true
}

func without(doc bson.D, key string) bson.D {
	out := make(bson.D, 0, len(doc))
	for _, e := range doc {
		if e.Key != key {
			out = append(out, e)
		}
	}
	return out
}
