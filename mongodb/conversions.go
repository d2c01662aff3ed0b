package mongodb

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

const (
	subtypeUUIDOld byte = 0x03
	subtypeUUID    byte = 0x04
)

var uuidType = reflect.TypeOf(uuid.UUID{})

// Conversion maps one Go type to and from BSON.
type Conversion struct {
	Type    reflect.Type
	Encoder bsoncodec.ValueEncoder
	Decoder bsoncodec.ValueDecoder
}

// CustomConversions is the set of type conversions a mapping converter
// registers on top of the driver defaults.
type CustomConversions struct {
	representation string
	conversions    []Conversion
}

// NewCustomConversions returns conversions with the built-in uuid.UUID
// codec for representation plus the given ones, which may override it.
func NewCustomConversions(representation string, conversions ...Conversion) (*CustomConversions, error) {
	if representation == "" {
		representation = UUIDStandard
	}
	if representation != UUIDStandard && representation != UUIDJavaLegacy {
		return nil, fmt.Errorf("mongodb: unknown uuid representation %q", representation)
	}
	for _, c := range conversions {
		if c.Type == nil || (c.Encoder == nil && c.Decoder == nil) {
			return nil, fmt.Errorf("mongodb: conversion needs a type and an encoder or decoder")
		}
	}
	codec := uuidCodec{representation: representation}
	all := append([]Conversion{{Type: uuidType, Encoder: codec, Decoder: codec}}, conversions...)
	return &CustomConversions{representation: representation, conversions: all}, nil
}

func (c *CustomConversions) UUIDRepresentation() string { return c.representation }

func (c *CustomConversions) Conversions() []Conversion {
	return append([]Conversion(nil), c.conversions...)
}

// Register installs the conversions on reg.
func (c *CustomConversions) Register(reg *bsoncodec.Registry) {
	for _, conv := range c.conversions {
		if conv.Encoder != nil {
			reg.RegisterTypeEncoder(conv.Type, conv.Encoder)
		}
		if conv.Decoder != nil {
			reg.RegisterTypeDecoder(conv.Type, conv.Decoder)
		}
	}
}

// Registry returns a driver default registry with the conversions applied.
func (c *CustomConversions) Registry() *bsoncodec.Registry {
	reg := bson.NewRegistry()
	c.Register(reg)
	return reg
}

// uuidCodec writes uuid.UUID as binary subtype 4, or subtype 3 in the
// legacy Java byte order.
type uuidCodec struct {
	representation string
}

func (c uuidCodec) EncodeValue(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	if !val.IsValid() || val.Type() != uuidType {
		return bsoncodec.ValueEncoderError{Name: "UUIDEncodeValue", Types: []reflect.Type{uuidType}, Received: val}
	}
	id := val.Interface().(uuid.UUID)
	if c.representation == UUIDJavaLegacy {
		return vw.WriteBinaryWithSubtype(javaLegacyBytes(id[:]), subtypeUUIDOld)
	}
	return vw.WriteBinaryWithSubtype(id[:], subtypeUUID)
}

func (c uuidCodec) DecodeValue(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	if !val.CanSet() || val.Type() != uuidType {
		return bsoncodec.ValueDecoderError{Name: "UUIDDecodeValue", Types: []reflect.Type{uuidType}, Received: val}
	}

	var id uuid.UUID
	switch vr.Type() {
	case bsontype.Binary:
		data, subtype, err := vr.ReadBinary()
		if err != nil {
			return err
		}
		if len(data) != 16 || (subtype != subtypeUUID && subtype != subtypeUUIDOld) {
			return fmt.Errorf("mongodb: cannot decode binary subtype %#x of length %d into uuid.UUID", subtype, len(data))
		}
		if subtype == subtypeUUIDOld && c.representation == UUIDJavaLegacy {
			data = javaLegacyBytes(data)
		}
		copy(id[:], data)
	case bsontype.String:
		s, err := vr.ReadString()
		if err != nil {
			return err
		}
		if id, err = uuid.Parse(s); err != nil {
			return err
		}
	case bsontype.Null:
		if err := vr.ReadNull(); err != nil {
			return err
		}
	case bsontype.Undefined:
		if err := vr.ReadUndefined(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("mongodb: cannot decode %v into uuid.UUID", vr.Type())
	}
	val.Set(reflect.ValueOf(id))
	return nil
}

// javaLegacyBytes reverses each 8-byte half, which converts between the
// standard and the legacy Java layout in both directions.
func javaLegacyBytes(b []byte) []byte {
	out := make([]byte, 16)
	for i := 0; i < 8; i++ {
		out[i] = b[7-i]
		out[8+i] = b[15-i]
	}
	return out
}
