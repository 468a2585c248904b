package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PaymentMethod represents how an order is paid
type PaymentMethod int

const (
	PaymentMethodCard           PaymentMethod = 0
	PaymentMethodMobileMoney    PaymentMethod = 1
	PaymentMethodCashOnDelivery PaymentMethod = 2
)

func (m PaymentMethod) String() string {
	return [...]string{"card", "mobile_money", "cash_on_delivery"}[m]
}

// ParsePaymentMethod parses a method name as used in query parameters
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch s {
	case "card":
		return PaymentMethodCard, true
	case "mobile_money":
		return PaymentMethodMobileMoney, true
	case "cash_on_delivery":
		return PaymentMethodCashOnDelivery, true
	}
	return PaymentMethodCard, false
}

func (m PaymentMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*m = PaymentMethod(i)
		return nil
	}
	switch str {
	case "card":
		*m = PaymentMethodCard
	case "mobile_money":
		*m = PaymentMethodMobileMoney
	case "cash_on_delivery":
		*m = PaymentMethodCashOnDelivery
	}
	return nil
}

func (m PaymentMethod) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *PaymentMethod) Scan(value interface{}) error {
	if value == nil {
		*m = PaymentMethodCard
		return nil
	}
	switch v := value.(type) {
	case int64:
		*m = PaymentMethod(v)
	case int:
		*m = PaymentMethod(v)
	}
	return nil
}
