package utils

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestToFloat(t *testing.T) {
	dec, _ := primitive.ParseDecimal128("12.5")

	cases := []struct {
		name    string
		in      interface{}
		want    float64
		isNil   bool
		wantErr bool
	}{
		{name: "nil", in: nil, isNil: true},
		{name: "empty string", in: "  ", isNil: true},
		{name: "float", in: 3.25, want: 3.25},
		{name: "int32", in: int32(7), want: 7},
		{name: "int64", in: int64(9), want: 9},
		{name: "numeric string", in: " 42.5 ", want: 42.5},
		{name: "bytes", in: []byte("1.5"), want: 1.5},
		{name: "decimal128", in: dec, want: 12.5},
		{name: "garbage string", in: "forty", wantErr: true},
		{name: "bool", in: true, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToFloat(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.isNil {
				if got != nil {
					t.Fatalf("expected nil, got %v", *got)
				}
				return
			}
			if got == nil || *got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFloatOr(t *testing.T) {
	if got := FloatOr("n/a", 2); got != 2 {
		t.Errorf("malformed: got %v, want 2", got)
	}
	if got := FloatOr(nil, 3); got != 3 {
		t.Errorf("missing: got %v, want 3", got)
	}
	if got := FloatOr(int(4), 0); got != 4 {
		t.Errorf("int: got %v, want 4", got)
	}
}

func TestToString(t *testing.T) {
	oid := primitive.NewObjectID()
	if got := ToString(oid); got != oid.Hex() {
		t.Errorf("ObjectID: got %q, want %q", got, oid.Hex())
	}
	if got := ToString(nil); got != "" {
		t.Errorf("nil: got %q", got)
	}
	if got := ToString(int32(12)); got != "12" {
		t.Errorf("int32: got %q", got)
	}
}

func TestToBool(t *testing.T) {
	truthy := []interface{}{true, "true", "1", int32(1), 2.0}
	for _, v := range truthy {
		if !ToBool(v) {
			t.Errorf("ToBool(%#v) = false, want true", v)
		}
	}
	falsy := []interface{}{nil, false, "no", "", 0, int64(0)}
	for _, v := range falsy {
		if ToBool(v) {
			t.Errorf("ToBool(%#v) = true, want false", v)
		}
	}
}

func TestConvertDateTime(t *testing.T) {
	want := time.Date(2023, 4, 5, 0, 0, 0, 0, time.UTC)

	for _, in := range []interface{}{"2023-04-05", "2023-04-05T00:00:00Z", primitive.NewDateTimeFromTime(want)} {
		got, err := ConvertDateTime(in)
		if err != nil {
			t.Fatalf("ConvertDateTime(%v): %v", in, err)
		}
		if got == nil || !got.Equal(want) {
			t.Fatalf("ConvertDateTime(%v) = %v, want %v", in, got, want)
		}
	}

	if got, err := ConvertDateTime(""); err != nil || got != nil {
		t.Fatalf("empty string: got %v, %v", got, err)
	}
	if _, err := ConvertDateTime("05/04/2023 noon"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestAsDocSlice(t *testing.T) {
	arr := primitive.A{
		primitive.M{"name": "A", "total_hours": 4},
		primitive.D{{Key: "name", Value: "B"}},
		"not a document",
	}
	docs, err := AsDocSlice(arr)
	if err != nil {
		t.Fatalf("AsDocSlice: %v", err)
	}
	if len(docs) != 2 || docs[0]["name"] != "A" || docs[1]["name"] != "B" {
		t.Fatalf("unexpected docs: %v", docs)
	}

	docs, err = AsDocSlice(`[{"worker_name":"J Doe","total_hours":5}]`)
	if err != nil {
		t.Fatalf("json text: %v", err)
	}
	if len(docs) != 1 || docs[0]["worker_name"] != "J Doe" {
		t.Fatalf("unexpected docs from json: %v", docs)
	}

	if _, err := AsDocSlice(42); err == nil {
		t.Fatal("expected error for scalar")
	}
}
