package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PaymentStatus represents the payment state of an order
type PaymentStatus int

const (
	PaymentStatusPending PaymentStatus = 0
	PaymentStatusPaid    PaymentStatus = 1
	PaymentStatusFailed  PaymentStatus = 2
	PaymentStatusRefunded PaymentStatus = 3
)

func (s PaymentStatus) String() string {
	return [...]string{"pending", "paid", "failed", "refunded"}[s]
}

// ParsePaymentStatus parses a status name as used in query parameters
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch s {
	case "pending":
		return PaymentStatusPending, true
	case "paid":
		return PaymentStatusPaid, true
	case "failed":
		return PaymentStatusFailed, true
	case "refunded":
		return PaymentStatusRefunded, true
	}
	return PaymentStatusPending, false
}

// IsTerminal reports whether the status can no longer change through the
// automatic payment flow. Refunds are an administrative action on a paid order.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusFailed || s == PaymentStatusRefunded
}

func (s PaymentStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PaymentStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		// Try unmarshaling as int
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = PaymentStatus(i)
		return nil
	}
	switch str {
	case "pending":
		*s = PaymentStatusPending
	case "paid":
		*s = PaymentStatusPaid
	case "failed":
		*s = PaymentStatusFailed
	case "refunded":
		*s = PaymentStatusRefunded
	}
	return nil
}

func (s PaymentStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *PaymentStatus) Scan(value interface{}) error {
	if value == nil {
		*s = PaymentStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = PaymentStatus(v)
	case int:
		*s = PaymentStatus(v)
	}
	return nil
}
