package types

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseIssuanceID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		kind    IDKind
		wantErr bool
	}{
		{"long upper", strings.Repeat("AB", 32), KindLong, false},
		{"long lower", strings.Repeat("ab", 32), KindLong, false},
		{"short", strings.Repeat("0C", 24), KindShort, false},
		{"empty", "", KindInvalid, true},
		{"odd length", strings.Repeat("A", 63), KindInvalid, true},
		{"between sizes", strings.Repeat("AB", 28), KindInvalid, true},
		{"non hex", strings.Repeat("ZZ", 32), KindInvalid, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseIssuanceID(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrIssuanceIDFormat) {
					t.Errorf("error = %v, want ErrIssuanceIDFormat", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseIssuanceID: %v", err)
			}
			if id.Kind() != tt.kind {
				t.Errorf("Kind() = %s, want %s", id.Kind(), tt.kind)
			}
			if id.String() != strings.ToUpper(tt.input) {
				t.Errorf("String() = %s, want %s", id.String(), strings.ToUpper(tt.input))
			}
			if len(id.Bytes()) != id.Len() {
				t.Errorf("Bytes() length = %d, want %d", len(id.Bytes()), id.Len())
			}
		})
	}
}

func TestIssuanceID_KindsNeverEqual(t *testing.T) {
	var short [ShortIssuanceIDSize]byte
	var long [LongIssuanceIDSize]byte
	s := NewShortIssuanceID(short)
	l := NewLongIssuanceID(long)
	if s == l {
		t.Error("short and long identifiers with zero bytes must differ")
	}
	if s.Len() != 24 || l.Len() != 32 {
		t.Errorf("lengths = %d/%d, want 24/32", s.Len(), l.Len())
	}
}

func TestIssuanceID_ZeroValue(t *testing.T) {
	var id IssuanceID
	if !id.IsZero() {
		t.Error("zero value should be zero")
	}
	if id.String() != "" {
		t.Errorf("String() = %q, want empty", id.String())
	}
}

func TestIssuanceID_JSON(t *testing.T) {
	type wrapper struct {
		ID IssuanceID `json:"id"`
	}
	in := wrapper{ID: MustParseIssuanceID(strings.Repeat("1f", 24))}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), strings.Repeat("1F", 24)) {
		t.Errorf("json = %s", data)
	}
	var out wrapper
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.ID != in.ID {
		t.Errorf("roundtrip = %s, want %s", out.ID, in.ID)
	}

	var empty wrapper
	if err := json.Unmarshal([]byte(`{"id":""}`), &empty); err != nil {
		t.Fatal(err)
	}
	if !empty.ID.IsZero() {
		t.Error("empty string should decode to zero id")
	}
}
