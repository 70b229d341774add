package barcode

import "strings"

// Kind is the dialect of a scanned code.
type Kind int

const (
	// KindPlain is an ordinary barcode, used as a primary code as-is.
	KindPlain Kind = iota
	// KindScale is a weighing-scale ticket: prefix 20/21, a 5-digit
	// zero-padded internal code and an embedded weight.
	KindScale
	// KindPLU is a pre-packed ticket: 10 zeros followed by the internal
	// code.
	KindPLU
)

func (k Kind) String() string {
	switch k {
	case KindScale:
		return "scale"
	case KindPLU:
		return "plu"
	default:
		return "plain"
	}
}

// Result holds the classification of one scanned or typed code.
type Result struct {
	Kind Kind
	// Code is the normalized input.
	Code string
	// InternalCode is the decoded product code (leading zeros stripped)
	// for KindScale and KindPLU.
	InternalCode string
	// Weight is the decoded weight in kg for KindScale, valid only when
	// HasWeight is set. Scale tickets with an undecodable weight field
	// still classify as KindScale.
	Weight    float64
	HasWeight bool
	// BaseCode is the scale ticket with its weight field zeroed:
	// prefix + "0" + 5-digit internal code + "000000". Only for KindScale.
	BaseCode string
}

// Normalize trims the input and strips the leading quote-apostrophe
// artifact spreadsheet exports leave on numeric codes.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "'") {
		s = s[1:]
	}
	return s
}

// Classify determines the dialect of a raw code and decodes its embedded
// fields. Pure and deterministic; the input is normalized first.
func Classify(raw string) Result {
	code := Normalize(raw)

	if r, ok := classifyScale(code); ok {
		return r
	}
	if r, ok := classifyPLU(code); ok {
		return r
	}
	return Result{Kind: KindPlain, Code: code}
}

// scale ticket prefixes emitted by weighing-scale label printers
func hasScalePrefix(code string) bool {
	return strings.HasPrefix(code, "20") || strings.HasPrefix(code, "21")
}

func classifyScale(code string) (Result, bool) {
	if !hasScalePrefix(code) || len(code) < 8 {
		return Result{}, false
	}
	padded := code[2:7]
	if !allDigits(padded) {
		// Prefix matched but the ticket contract did not; treat as a
		// plain code rather than failing the scan.
		return Result{}, false
	}
	r := Result{
		Kind:         KindScale,
		Code:         code,
		InternalCode: stripLeadingZeros(padded),
		BaseCode:     code[:2] + "0" + padded + "000000",
	}

	// Weight fallback chain: 6 digits -> /10000, 5 digits -> /1000,
	// last 4 digits -> /10000. Otherwise the weight stays undefined.
	if len(code) >= 13 && allDigits(code[7:13]) {
		r.Weight = float64(digitsValue(code[7:13])) / 10000
		r.HasWeight = true
	} else if len(code) >= 12 && allDigits(code[7:12]) {
		r.Weight = float64(digitsValue(code[7:12])) / 1000
		r.HasWeight = true
	} else if last4 := code[len(code)-4:]; allDigits(last4) {
		r.Weight = float64(digitsValue(last4)) / 10000
		r.HasWeight = true
	}
	return r, true
}

func classifyPLU(code string) (Result, bool) {
	// Exactly 10 zeros followed by a 3-5 digit internal code.
	if len(code) < 13 || len(code) > 15 {
		return Result{}, false
	}
	if code[:10] != "0000000000" || !allDigits(code[10:]) {
		return Result{}, false
	}
	// The internal code is taken from the last five characters so a
	// 13-digit ticket keeps its full 3-digit code.
	tail := code
	if len(tail) > 5 {
		tail = tail[len(tail)-5:]
	}
	return Result{
		Kind:         KindPLU,
		Code:         code,
		InternalCode: stripLeadingZeros(tail),
	}, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func digitsValue(s string) int64 {
	var v int64
	for i := 0; i < len(s); i++ {
		v = v*10 + int64(s[i]-'0')
	}
	return v
}

func stripLeadingZeros(s string) string {
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}
