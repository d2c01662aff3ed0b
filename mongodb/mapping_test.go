package mongodb

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Audit struct {
	CreatedAt time.Time `mongo:"index"`
}

type order struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	CustomerID string             `mongo:"index"`
	Number     string             `bson:"number" mongo:"index,unique"`
	Total      int64
	Audit      `bson:",inline"`
}

type invoice struct {
	ID  string `bson:"_id"`
	Ref uuid.UUID
}

func (invoice) CollectionName() string { return "billing_invoices" }
func (invoice) TypeAlias() string      { return "invoice" }

type money struct {
	Cents int64
}

func TestNamingStrategyFieldName(t *testing.T) {
	tests := []struct {
		strategy NamingStrategy
		in, want string
	}{
		{LowerCase, "CreatedAt", "createdat"},
		{SnakeCase, "CreatedAt", "created_at"},
		{SnakeCase, "CustomerID", "customer_id"},
		{SnakeCase, "HTTPServer", "http_server"},
		{CamelCase, "CreatedAt", "createdAt"},
		{CamelCase, "URLPath", "urlPath"},
		{CamelCase, "ID", "_id"},
		{SnakeCase, "Id", "_id"},
	}
	for _, tc := range tests {
		t.Run(string(tc.strategy)+"/"+tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.strategy.FieldName(tc.in))
		})
	}
}

func TestMappingContextEntities(t *testing.T) {
	managed := NewManagedTypes(TypeOf[order](), reflect.TypeOf(&invoice{}), TypeOf[[]order]())
	assert.Equal(t, 2, managed.Len())

	mc, err := NewMappingContext(managed, nil, SnakeCase, true)
	require.NoError(t, err)
	assert.True(t, mc.AutoIndexCreation())
	require.Len(t, mc.Entities(), 2)

	o, err := mc.Entity(TypeOf[order]())
	require.NoError(t, err)
	assert.Equal(t, "order", o.Collection)
	assert.Equal(t, "github.com/kbukum/multimongo/mongodb.order", o.Alias)
	assert.Equal(t, []IndexDefinition{
		{Field: "customer_id"},
		{Field: "number", Unique: true},
		{Field: "created_at"},
	}, o.Indexes)

	inv, err := mc.Entity(reflect.TypeOf(invoice{}))
	require.NoError(t, err)
	assert.Equal(t, "billing_invoices", inv.Collection)
	assert.Equal(t, "invoice", inv.Alias)
	assert.Empty(t, inv.Indexes)

	_, err = mc.Entity(reflect.TypeOf(""))
	assert.Error(t, err)
}

func TestMappingContextRejectsConvertedTypes(t *testing.T) {
	enc := bsoncodec.ValueEncoderFunc(func(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, v reflect.Value) error {
		return vw.WriteInt64(v.Interface().(money).Cents)
	})
	conv, err := NewCustomConversions(UUIDStandard, Conversion{Type: reflect.TypeOf(money{}), Encoder: enc})
	require.NoError(t, err)
	assert.Len(t, conv.Conversions(), 2)

	mc, err := NewMappingContext(nil, conv, LowerCase, false)
	require.NoError(t, err)
	_, err = mc.Entity(reflect.TypeOf(money{}))
	assert.Error(t, err)

	c, err := NewMappingConverter(mc, conv, true)
	require.NoError(t, err)
	doc, err := c.Write(struct{ Price money }{Price: money{Cents: 1250}})
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "price", Value: int64(1250)}}, doc)
}

func TestConverterWriteRejectsUnmappableStruct(t *testing.T) {
	enc := bsoncodec.ValueEncoderFunc(func(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, v reflect.Value) error {
		dw, err := vw.WriteDocument()
		if err != nil {
			return err
		}
		ew, err := dw.WriteDocumentElement("cents")
		if err != nil {
			return err
		}
		if err := ew.WriteInt64(v.Interface().(money).Cents); err != nil {
			return err
		}
		return dw.WriteDocumentEnd()
	})
	conv, err := NewCustomConversions(UUIDStandard, Conversion{Type: reflect.TypeOf(money{}), Encoder: enc})
	require.NoError(t, err)
	mc, err := NewMappingContext(nil, conv, LowerCase, false)
	require.NoError(t, err)

	c, err := NewMappingConverter(mc, conv, false)
	require.NoError(t, err)
	doc, err := c.Write(money{Cents: 99})
	require.Error(t, err)
	assert.Nil(t, doc)
	assert.Contains(t, err.Error(), "not an entity")

	untyped, err := NewMappingConverter(mc, conv, true)
	require.NoError(t, err)
	doc, err = untyped.Write(money{Cents: 99})
	require.NoError(t, err, "without a type key no entity is needed")
	assert.Equal(t, bson.D{{Key: "cents", Value: int64(99)}}, doc)
}

func TestNewCustomConversionsValidation(t *testing.T) {
	_, err := NewCustomConversions("python_legacy")
	assert.Error(t, err)

	_, err = NewCustomConversions(UUIDStandard, Conversion{Type: reflect.TypeOf(money{})})
	assert.Error(t, err)

	c, err := NewCustomConversions("")
	require.NoError(t, err)
	assert.Equal(t, UUIDStandard, c.UUIDRepresentation())
}

func TestUUIDRepresentations(t *testing.T) {
	id := uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff")

	tests := []struct {
		representation string
		subtype        byte
		data           []byte
	}{
		{UUIDStandard, subtypeUUID, id[:]},
		{UUIDJavaLegacy, subtypeUUIDOld, []byte{
			0x77, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11, 0x00,
			0xff, 0xee, 0xdd, 0xcc, 0xbb, 0xaa, 0x99, 0x88,
		}},
	}
	for _, tc := range tests {
		t.Run(tc.representation, func(t *testing.T) {
			conv, err := NewCustomConversions(tc.representation)
			require.NoError(t, err)
			c, err := NewMappingConverter(nil, conv, true)
			require.NoError(t, err)

			raw, err := bson.MarshalWithRegistry(c.Registry(), invoice{ID: "inv-1", Ref: id})
			require.NoError(t, err)
			subtype, data := bson.Raw(raw).Lookup("ref").Binary()
			assert.Equal(t, tc.subtype, subtype)
			assert.Equal(t, tc.data, data)

			var back invoice
			require.NoError(t, c.Read(raw, &back))
			assert.Equal(t, id, back.Ref)
		})
	}
}

func TestUUIDDecodesStrings(t *testing.T) {
	c, err := NewMappingConverter(nil, nil, false)
	require.NoError(t, err)

	raw, err := bson.Marshal(bson.D{{Key: "_id", Value: "x"}, {Key: "ref", Value: "00112233-4455-6677-8899-aabbccddeeff"}})
	require.NoError(t, err)

	var inv invoice
	require.NoError(t, c.Read(raw, &inv))
	assert.Equal(t, "00112233-4455-6677-8899-aabbccddeeff", inv.Ref.String())
}

func TestConverterWrite(t *testing.T) {
	mc, err := NewMappingContext(nil, nil, LowerCase, false)
	require.NoError(t, err)

	c, err := NewMappingConverter(mc, nil, false)
	require.NoError(t, err)
	assert.Equal(t, TypeKey, c.TypeKey())

	doc, err := c.Write(&order{CustomerID: "c1", Number: "n1", Total: 3})
	require.NoError(t, err)

	_, hasID := lookup(doc, "_id")
	assert.False(t, hasID, "zero object id is omitted")
	v, _ := lookup(doc, "customerid")
	assert.Equal(t, "c1", v)
	v, _ = lookup(doc, "number")
	assert.Equal(t, "n1", v)
	_, ok := lookup(doc, "createdat")
	assert.True(t, ok, "inline fields are flattened")
	assert.Equal(t, bson.E{Key: TypeKey, Value: "github.com/kbukum/multimongo/mongodb.order"}, doc[len(doc)-1])

	plain, err := c.Write(bson.M{"a": 1})
	require.NoError(t, err)
	_, ok = lookup(plain, TypeKey)
	assert.False(t, ok, "maps carry no type key")

	untyped, err := NewMappingConverter(mc, nil, true)
	require.NoError(t, err)
	doc, err = untyped.Write(order{Number: "n2"})
	require.NoError(t, err)
	_, ok = lookup(doc, TypeKey)
	assert.False(t, ok)
}

func TestConverterRead(t *testing.T) {
	c, err := NewMappingConverter(nil, nil, false)
	require.NoError(t, err)

	raw, err := bson.Marshal(bson.D{
		{Key: "customerid", Value: "c9"},
		{Key: "number", Value: "n9"},
		{Key: TypeKey, Value: "ignored"},
	})
	require.NoError(t, err)

	var o order
	require.NoError(t, c.Read(raw, &o))
	assert.Equal(t, "c9", o.CustomerID)
	assert.Equal(t, "n9", o.Number)
}

func TestConverterSetID(t *testing.T) {
	c, err := NewMappingConverter(nil, nil, false)
	require.NoError(t, err)

	oid := primitive.NewObjectID()
	o := &order{}
	c.setID(o, oid)
	assert.Equal(t, oid, o.ID)

	other := primitive.NewObjectID()
	c.setID(o, other)
	assert.Equal(t, oid, o.ID, "an existing id is kept")

	inv := &invoice{}
	c.setID(inv, oid)
	assert.Empty(t, inv.ID, "incompatible id types are ignored")
}

func TestIDOf(t *testing.T) {
	_, ok := idOf(bson.D{{Key: "_id", Value: primitive.NilObjectID}})
	assert.False(t, ok)
	id, ok := idOf(bson.D{{Key: "_id", Value: "k"}})
	assert.True(t, ok)
	assert.Equal(t, "k", id)
	assert.Equal(t, bson.D{{Key: "a", Value: 1}}, without(bson.D{{Key: "_id", Value: 1}, {Key: "a", Value: 1}}, "_id"))
}
