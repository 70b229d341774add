package model

// Session kinds. A plain session counts quantities only; an expiry
// session tracks quantity per expiry date.
const (
	SessionKindPlain  = "plain"
	SessionKindExpiry = "expiry"
)

type Session struct {
	ID             int64  `db:"id" json:"id"`
	Name           string `db:"name" json:"name"`
	Note           string `db:"note" json:"note"`
	Kind           string `db:"kind" json:"kind"`
	CreatedAtMilli int64  `db:"created_at" json:"createdAt"`
}

// SessionStats is a session annotated with distinct-article counts and
// the timestamp of its most recent write.
type SessionStats struct {
	Session
	PlainCount    int   `json:"plainCount"`
	ExpiryCount   int   `json:"expiryCount"`
	ItemCount     int   `json:"itemCount"`
	LastWriteAtMs int64 `json:"lastWriteAt"`
}

// PlainItem is one counted line in a plain session. The article columns
// are populated only by the joined list queries.
type PlainItem struct {
	ID        int64   `db:"id" json:"id"`
	SessionID int64   `db:"session_id" json:"sessionId"`
	Code      string  `db:"primary_code" json:"code"`
	Quantity  float64 `db:"quantity" json:"quantity"`
	TsMilli   int64   `db:"ts" json:"ts"`

	InternalCode string  `db:"internal_code" json:"internalCode,omitempty"`
	Description  string  `db:"description" json:"description,omitempty"`
	UnitsPerCase float64 `db:"units_per_case" json:"unitsPerCase,omitempty"`
}

// ExpiryItem is one counted line in an expiry session, keyed by
// (session, code, date, lot). Lot is reserved and currently always
// empty.
type ExpiryItem struct {
	ID          int64   `db:"id" json:"id"`
	SessionID   int64   `db:"session_id" json:"sessionId"`
	Code        string  `db:"primary_code" json:"code"`
	Quantity    float64 `db:"quantity" json:"quantity"`
	ExpiryMilli int64   `db:"expiry_date" json:"expiryDate"`
	Lot         string  `db:"lot" json:"lot"`
	TsMilli     int64   `db:"ts" json:"ts"`

	InternalCode string  `db:"internal_code" json:"internalCode,omitempty"`
	Description  string  `db:"description" json:"description,omitempty"`
	UnitsPerCase float64 `db:"units_per_case" json:"unitsPerCase,omitempty"`
}
