package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDocumentRoundTripKeepsOrder(t *testing.T) {
	in := `{"title":"Box","weight":2.5,"count":3,"created_by":"a@x.com","tags":["x",1],"to":{"city":"Dhaka","zip":null}}`

	var doc Document
	if err := json.Unmarshal([]byte(in), &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	want := []string{"title", "weight", "count", "created_by", "tags", "to"}
	if got := strings.Join(doc.Keys(), ","); got != strings.Join(want, ",") {
		t.Fatalf("Keys() = %s, want %s", got, strings.Join(want, ","))
	}

	if v, _ := doc.Get("count"); v != int64(3) {
		t.Errorf("count = %#v, want int64(3)", v)
	}
	if v, _ := doc.Get("weight"); v != 2.5 {
		t.Errorf("weight = %#v, want 2.5", v)
	}
	if v, _ := doc.Get("to"); !isDocument(v) {
		t.Errorf("to = %T, want Document", v)
	}

	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != in {
		t.Errorf("Marshal() = %s\nwant        %s", out, in)
	}
}

func TestDocumentDuplicateKeyKeepsLastValue(t *testing.T) {
	var doc Document
	if err := json.Unmarshal([]byte(`{"a":1,"b":2,"a":3}`), &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	out, _ := json.Marshal(doc)
	if string(out) != `{"a":3,"b":2}` {
		t.Errorf("Marshal() = %s", out)
	}
}

func TestDocumentRejectsNonObject(t *testing.T) {
	for _, in := range []string{`[]`, `"parcel"`, `42`} {
		var doc Document
		err := json.Unmarshal([]byte(in), &doc)
		if !errors.Is(err, ErrNotAnObject) {
			t.Errorf("Unmarshal(%s) error = %v, want ErrNotAnObject", in, err)
		}
	}
}

func TestDocumentEmptyObject(t *testing.T) {
	var doc Document
	if err := json.Unmarshal([]byte(`{}`), &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if doc == nil || len(doc) != 0 {
		t.Fatalf("doc = %#v, want empty non-nil", doc)
	}
	out, _ := json.Marshal(doc)
	if string(out) != `{}` {
		t.Errorf("Marshal() = %s", out)
	}
}

func TestDocumentCreatedBy(t *testing.T) {
	doc := Document{{Key: "created_by", Value: "a@x.com"}}
	if got, ok := doc.CreatedBy(); !ok || got != "a@x.com" {
		t.Errorf("CreatedBy() = %q, %v", got, ok)
	}

	doc.Set("created_by", int64(7))
	if _, ok := doc.CreatedBy(); ok {
		t.Error("CreatedBy() ok for non-string value")
	}
}

func TestCompareValues(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		a, b any
		want int
	}{
		{"null before number", nil, int64(1), -1},
		{"number before string", 5.0, "a", -1},
		{"int and float", int64(2), 1.5, 1},
		{"equal numbers", int64(2), 2.0, 0},
		{"strings", "2024-01-02", "2024-01-01", 1},
		{"string before bool", "z", true, -1},
		{"false before true", false, true, -1},
		{"bool before time", true, now, -1},
		{"times", now, now.Add(time.Second), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompareValues(tt.a, tt.b); got != tt.want {
				t.Errorf("CompareValues(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSortByCreatedAtDesc(t *testing.T) {
	mk := func(title string, createdAt any) Parcel {
		doc := Document{{Key: "title", Value: title}}
		if createdAt != nil {
			doc.Set(FieldCreatedAt, createdAt)
		}
		return Parcel{ID: NewParcelID(), Fields: doc}
	}

	parcels := []Parcel{
		mk("old", "2024-01-01"),
		mk("none-1", nil),
		mk("new", "2024-03-01"),
		mk("none-2", nil),
		mk("mid", "2024-02-01"),
	}
	SortByCreatedAtDesc(parcels)

	var got []string
	for _, p := range parcels {
		title, _ := p.Fields.Get("title")
		got = append(got, title.(string))
	}
	want := "new,mid,old,none-1,none-2"
	if strings.Join(got, ",") != want {
		t.Errorf("order = %s, want %s", strings.Join(got, ","), want)
	}
}

func isDocument(v any) bool {
	_, ok := v.(Document)
	return ok
}

func TestDocumentClone(t *testing.T) {
	orig := Document{
		{Key: "to", Value: Document{{Key: "city", Value: "Dhaka"}}},
		{Key: "tags", Value: []any{"fragile"}},
	}
	cp := orig.Clone()

	to, _ := cp.Get("to")
	nested := to.(Document)
	nested.Set("city", "Khulna")
	cp[1].Value.([]any)[0] = "heavy"

	city, _ := orig[0].Value.(Document).Get("city")
	if city != "Dhaka" {
		t.Errorf("nested document shared with clone: city = %v", city)
	}
	if orig[1].Value.([]any)[0] != "fragile" {
		t.Error("array shared with clone")
	}
}
