package mpesa

import "strconv"

// STKPushRequest is the input to Client.STKPush. Amount is in cents; the
// client converts it to the gateway's minimal currency unit (whole shillings)
// before transmission.
type STKPushRequest struct {
	Phone            string
	Amount           int64
	AccountReference string
	Description      string
}

// STKPushResponse carries the correlation pair the gateway assigns to an
// accepted push request. The same MerchantRequestID is echoed in the later
// callback and is what reconciliation matches on.
type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// stkPushPayload is the wire format of the push-payment request.
type stkPushPayload struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// tokenResponse is the OAuth token endpoint response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// apiError is the error body the gateway returns on rejected requests.
type apiError struct {
	RequestID    string `json:"requestId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// CallbackEnvelope is the body of the asynchronous result callback. The
// payload is loosely typed on the wire; every field is treated as optional
// and validated on entry.
type CallbackEnvelope struct {
	Body CallbackBody `json:"Body"`
}

// CallbackBody wraps the stkCallback element.
type CallbackBody struct {
	STKCallback *STKCallback `json:"stkCallback"`
}

// STKCallback is the transaction result inside a callback envelope.
// ResultCode zero means the payer authorized the charge.
type STKCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

// CallbackMetadata holds the named metadata items of a successful transaction.
type CallbackMetadata struct {
	Item []MetadataItem `json:"Item"`
}

// MetadataItem is a single Name/Value pair. Value may be a string or a number
// depending on the item.
type MetadataItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value,omitempty"`
}

// Callback extracts the stkCallback from the envelope, or nil if the expected
// nested shape is absent.
func (e *CallbackEnvelope) Callback() *STKCallback {
	if e == nil {
		return nil
	}
	return e.Body.STKCallback
}

// Succeeded reports whether the callback carries a successful result.
func (c *STKCallback) Succeeded() bool {
	return c.ResultCode == 0
}

// Metadata flattens the callback metadata items into a name-to-value map.
// Numeric values (transaction date, phone number) are rendered as plain
// decimal strings.
func (c *STKCallback) Metadata() map[string]string {
	meta := make(map[string]string)
	if c.CallbackMetadata == nil {
		return meta
	}
	for _, item := range c.CallbackMetadata.Item {
		if item.Name == "" || item.Value == nil {
			continue
		}
		meta[item.Name] = stringValue(item.Value)
	}
	return meta
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
