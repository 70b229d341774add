package barcode

import "testing"

func TestClassifyScale(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		internal string
		weight   float64
		hasW     bool
		base     string
	}{
		{"six digit weight", "2100510006657", "510", 0.6657, true, "2100510000000"},
		{"prefix 20", "2000510006657", "510", 0.6657, true, "2000510000000"},
		{"five digit weight", "210051000665", "510", 0.665, true, "2100510000000"},
		{"last four fallback", "2100510a06657", "510", 0.6657, true, "2100510000000"},
		{"full plu preserved", "2112345001234", "12345", 0.1234, true, "2112345000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Classify(tt.raw)
			if r.Kind != KindScale {
				t.Fatalf("kind = %v, want scale", r.Kind)
			}
			if r.InternalCode != tt.internal {
				t.Errorf("internal = %q, want %q", r.InternalCode, tt.internal)
			}
			if r.HasWeight != tt.hasW {
				t.Fatalf("hasWeight = %v, want %v", r.HasWeight, tt.hasW)
			}
			if tt.hasW && r.Weight != tt.weight {
				t.Errorf("weight = %v, want %v", r.Weight, tt.weight)
			}
			if r.BaseCode != tt.base {
				t.Errorf("base = %q, want %q", r.BaseCode, tt.base)
			}
		})
	}
}

func TestClassifyScaleNoWeight(t *testing.T) {
	// Non-digit tail in every weight window: weight stays undefined.
	r := Classify("2100510abcdefx")
	if r.Kind != KindScale {
		t.Fatalf("kind = %v, want scale", r.Kind)
	}
	if r.HasWeight {
		t.Errorf("weight decoded from %q, want none", "2100510abcdefx")
	}
}

func TestClassifyPLU(t *testing.T) {
	tests := []struct {
		raw      string
		internal string
	}{
		{"0000000000123", "123"},
		{"00000000001234", "1234"},
		{"000000000012345", "12345"},
		{"0000000000510", "510"},
	}
	for _, tt := range tests {
		r := Classify(tt.raw)
		if r.Kind != KindPLU {
			t.Fatalf("Classify(%q).Kind = %v, want plu", tt.raw, r.Kind)
		}
		if r.InternalCode != tt.internal {
			t.Errorf("Classify(%q).InternalCode = %q, want %q", tt.raw, r.InternalCode, tt.internal)
		}
	}
}

func TestClassifyPlainFallback(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		code string
	}{
		{"ordinary ean13", "7791234567890", "7791234567890"},
		{"quote artifact stripped", "'7791234567890", "7791234567890"},
		{"whitespace trimmed", "  123456  ", "123456"},
		{"scale prefix too short", "2012345", "2012345"},
		{"scale prefix non digit plu", "21ab510006657", "21ab510006657"},
		{"nine zeros is not plu", "000000000123", "000000000123"},
		{"plu with short tail", "000000000012", "000000000012"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Classify(tt.raw)
			if r.Kind != KindPlain {
				t.Fatalf("kind = %v, want plain", r.Kind)
			}
			if r.Code != tt.code {
				t.Errorf("code = %q, want %q", r.Code, tt.code)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	for _, raw := range []string{"2100510006657", "0000000000123", "'779123"} {
		a, b := Classify(raw), Classify(raw)
		if a != b {
			t.Errorf("Classify(%q) not stable: %+v vs %+v", raw, a, b)
		}
	}
}
