// Package mpesa implements a client for the Safaricom Daraja API's STK Push
// flow: a short-lived token exchange followed by a push-payment request that
// prompts the payer's phone. Completion is reported later through a callback,
// not in the push response.
package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
)

const (
	sandboxBaseURL    = "https://sandbox.safaricom.co.ke"
	productionBaseURL = "https://api.safaricom.co.ke"

	authPath    = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath = "/mpesa/stkpush/v1/processrequest"

	defaultTimeout = 30 * time.Second
)

var (
	ErrMissingCredentials = errors.New("missing M-Pesa credentials")
	ErrMissingShortcode   = errors.New("missing M-Pesa shortcode configuration")
	ErrInvalidAmount      = errors.New("amount must be a positive whole-shilling value")
)

// GatewayError is a rejection reported by the gateway itself, either as a
// non-2xx response or as a non-zero response code in a 2xx body.
type GatewayError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway rejected request (%s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("gateway rejected request (status %d): %s", e.StatusCode, e.Message)
}

// Config holds the gateway credentials and endpoints. All values come from
// the application configuration; the client performs no environment lookups.
type Config struct {
	Environment    string // "sandbox" or "production"
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string
	Passkey        string
	CallbackURL    string
	BaseURL        string // overrides the environment-derived base URL when set
	Timeout        time.Duration
}

func (c Config) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	if c.Environment == "production" {
		return productionBaseURL
	}
	return sandboxBaseURL
}

// Client talks to the Daraja API. It is stateless: every push obtains a fresh
// token, which keeps the client safe to share across processes at the cost of
// one extra round trip per push. Push volume is low and tokens are cheap.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a new Daraja client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Authenticate exchanges the client credentials for a short-lived bearer token.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	if c.cfg.ConsumerKey == "" || c.cfg.ConsumerSecret == "" {
		return "", ErrMissingCredentials
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.baseURL()+authPath, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &GatewayError{StatusCode: resp.StatusCode, Message: "token request rejected: " + strings.TrimSpace(string(body))}
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", errors.New("token response contained no access token")
	}

	return token.AccessToken, nil
}

// STKPush submits a push-payment request and returns the gateway-assigned
// correlation pair. The request amount is given in cents and rounded to whole
// shillings; zero and negative amounts are rejected before any network call.
func (c *Client) STKPush(ctx context.Context, push STKPushRequest) (*STKPushResponse, error) {
	if c.cfg.Shortcode == "" || c.cfg.Passkey == "" {
		return nil, ErrMissingShortcode
	}

	amount := roundToShillings(push.Amount)
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	token, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := FormatTimestamp(time.Now())
	phone := NormalizePhone(push.Phone)

	payload := stkPushPayload{
		BusinessShortCode: c.cfg.Shortcode,
		Password:          c.password(timestamp),
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            amount,
		PartyA:            phone,
		PartyB:            c.cfg.Shortcode,
		PhoneNumber:       phone,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  push.AccountReference,
		TransactionDesc:   push.Description,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.baseURL()+stkPushPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read push response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.ErrorMessage != "" {
			return nil, &GatewayError{StatusCode: resp.StatusCode, Code: apiErr.ErrorCode, Message: apiErr.ErrorMessage}
		}
		return nil, &GatewayError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	var result STKPushResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode push response: %w", err)
	}
	if result.ResponseCode != "0" {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Code: result.ResponseCode, Message: result.ResponseDescription}
	}

	return &result, nil
}

// password derives the request password: base64(shortcode + passkey + timestamp).
func (c *Client) password(timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(c.cfg.Shortcode + c.cfg.Passkey + timestamp))
}

// NormalizePhone rewrites a local-format Kenyan number (leading "0" or "+254")
// to the international format the gateway requires (leading "254").
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	switch {
	case strings.HasPrefix(phone, "+254"):
		return "254" + phone[4:]
	case strings.HasPrefix(phone, "0"):
		return "254" + phone[1:]
	default:
		return phone
	}
}

// FormatTimestamp renders a time in the gateway's YYYYMMDDHHmmss format.
func FormatTimestamp(t time.Time) string {
	return t.Format("20060102150405")
}

// roundToShillings converts cents to the nearest whole shilling.
func roundToShillings(cents int64) int64 {
	if cents <= 0 {
		return 0
	}
	return int64(math.Round(float64(cents) / 100))
}
