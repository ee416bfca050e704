package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseParcelID(t *testing.T) {
	id := NewParcelID()

	parsed, err := ParseParcelID(id.String())
	if err != nil {
		t.Fatalf("ParseParcelID() error = %v", err)
	}
	if !parsed.Equal(id) {
		t.Errorf("ParseParcelID() = %s, want %s", parsed, id)
	}
	if len(id.String()) != 24 {
		t.Errorf("len(String()) = %d, want 24", len(id.String()))
	}

	for _, bad := range []string{"", "abc", "zzzzzzzzzzzzzzzzzzzzzzzz", id.String() + "00"} {
		if _, err := ParseParcelID(bad); !errors.Is(err, ErrInvalidParcelID) {
			t.Errorf("ParseParcelID(%q) error = %v, want ErrInvalidParcelID", bad, err)
		}
	}
}

func TestNewParcelIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		s := NewParcelID().String()
		if seen[s] {
			t.Fatalf("duplicate id %s", s)
		}
		seen[s] = true
	}
}

func TestParcelMarshalJSON(t *testing.T) {
	id, _ := ParseParcelID("64b7f0c2a1b2c3d4e5f60718")
	p := Parcel{
		ID: id,
		Fields: Document{
			{Key: "title", Value: "Box"},
			{Key: "_id", Value: "client supplied"},
			{Key: "weight", Value: int64(2)},
		},
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"_id":"64b7f0c2a1b2c3d4e5f60718","title":"Box","weight":2}`
	if string(out) != want {
		t.Errorf("Marshal() = %s, want %s", out, want)
	}

	empty, _ := json.Marshal(Parcel{ID: id})
	if string(empty) != `{"_id":"64b7f0c2a1b2c3d4e5f60718"}` {
		t.Errorf("Marshal(empty) = %s", empty)
	}
}

func TestResultsJSON(t *testing.T) {
	id, _ := ParseParcelID("64b7f0c2a1b2c3d4e5f60718")

	ins, _ := json.Marshal(InsertResult{Acknowledged: true, InsertedID: id})
	if string(ins) != `{"acknowledged":true,"insertedId":"64b7f0c2a1b2c3d4e5f60718"}` {
		t.Errorf("InsertResult = %s", ins)
	}

	del, _ := json.Marshal(DeleteResult{Acknowledged: true})
	if string(del) != `{"acknowledged":true,"deletedCount":0}` {
		t.Errorf("DeleteResult = %s", del)
	}
}
