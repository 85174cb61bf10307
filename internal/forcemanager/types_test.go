package forcemanager

import "testing"

func TestDecodeReference(t *testing.T) {
	tests := []struct {
		name  string
		in    interface{}
		id    int64
		label string
		valid bool
	}{
		{"nil", nil, 0, "", false},
		{"object", map[string]interface{}{"id": float64(7), "value": "Spain"}, 7, "Spain", true},
		{"object without id", map[string]interface{}{"value": "Spain"}, 0, "Spain", true},
		{"bare number", float64(42), 42, "", true},
		{"numeric string", "42", 42, "42", true},
		{"empty string", "", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := DecodeReference(tt.in)
			if ref.ID != tt.id || ref.Label != tt.label || ref.Valid != tt.valid {
				t.Errorf("DecodeReference(%v) = %+v, want id=%d label=%q valid=%v",
					tt.in, ref, tt.id, tt.label, tt.valid)
			}
		})
	}
}

func TestRefValue(t *testing.T) {
	v := RefValue(95, "Joan Bonell")
	if v["id"] != int64(95) || v["value"] != "Joan Bonell" {
		t.Errorf("RefValue = %v", v)
	}

	v = RefValue(0, "Spain")
	if _, ok := v["id"]; ok {
		t.Error("zero id should be omitted")
	}
}

func TestResponseListShapes(t *testing.T) {
	bare := NewResponse([]interface{}{
		map[string]interface{}{"id": float64(1)},
		map[string]interface{}{"id": float64(2)},
	})
	if got := len(bare.List()); got != 2 {
		t.Errorf("bare array: %d records, want 2", got)
	}

	wrapped := NewResponse(map[string]interface{}{
		"results": []interface{}{map[string]interface{}{"id": float64(3)}},
	})
	list := wrapped.List()
	if len(list) != 1 || list[0].Int64("id") != 3 {
		t.Errorf("wrapped array: %v", list)
	}
}

func TestResponseEmpty(t *testing.T) {
	if !(&Response{}).Empty() {
		t.Error("zero Response should be empty")
	}
	if !NewResponse(map[string]interface{}{}).Empty() {
		t.Error("{} should be empty")
	}
	if NewResponse(map[string]interface{}{"id": float64(1)}).Empty() {
		t.Error("populated object should not be empty")
	}
}

func TestRecordAccessors(t *testing.T) {
	rec := Record{
		"name":  "Acme",
		"id":    float64(12),
		"total": "99.5",
		"flag":  true,
	}
	if rec.Str("name") != "Acme" || rec.Str("missing") != "" {
		t.Error("Str")
	}
	if rec.Int64("id") != 12 {
		t.Error("Int64")
	}
	if rec.Float("total") != 99.5 {
		t.Error("Float should coerce numeric strings")
	}
	if !rec.Bool("flag") || rec.Bool("missing") {
		t.Error("Bool")
	}
}
