package schema

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"sort"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

const requestRetries = 2

var (
	ErrInvalidUUID    = errors.New("uuid must be 16 characters")
	ErrInvalidAuthKey = errors.New("auth key must be 32 characters")
)

// Connection talks to the Tuya activation API the way the device firmware
// does: an md5-signed query string and an AES-ECB encrypted body keyed on
// the device auth key.
type Connection struct {
	deviceUUID string
	authKey    []byte
	httpClient *http.Client
	logger     *logrus.Logger
}

type Response struct {
	Success   bool             `json:"success"`
	ErrorCode string           `json:"errorCode"`
	Result    ActivationResult `json:"result"`
}

type ActivationResult struct {
	SchemaID string `json:"schemaId"`
	Schema   string `json:"schema"`
}

func NewConnection(deviceUUID, authKey string, httpClient *http.Client, logger *logrus.Logger) (*Connection, error) {
	if len(deviceUUID) != 16 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidUUID, len(deviceUUID))
	}
	if len(authKey) != 32 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidAuthKey, len(authKey))
	}
	return &Connection{
		deviceUUID: deviceUUID,
		authKey:    []byte(authKey),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Request signs and encrypts an API call and decrypts the response
// envelope. Transport errors are retried; a malformed response is not.
func (c *Connection) Request(ctx context.Context, endpoint string, params map[string]string, data map[string]interface{}) (*Response, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	encrypted, err := ecbEncrypt(c.authKey[:16], payload)
	if err != nil {
		return nil, err
	}
	url := endpoint + signedQuery(params, c.authKey)
	body := "data=" + strings.ToUpper(hex.EncodeToString(encrypted))
	c.logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
	}).Debug("sending activation API request")

	var response *Response
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", "TUYA_IOT_SDK")
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("bad response status from %v: %v", endpoint, resp.Status)
		}
		raw, err := ioutil.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		decoded, err := c.decodeEnvelope(raw)
		if err != nil {
			return backoff.Permanent(err)
		}
		response = decoded
		return nil
	}
	err = backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), requestRetries), ctx))
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (c *Connection) decodeEnvelope(raw []byte) (*Response, error) {
	var envelope struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("malformed API envelope: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(envelope.Result)
	if err != nil {
		return nil, fmt.Errorf("malformed API envelope: %w", err)
	}
	plaintext, err := ecbDecrypt(c.authKey[:16], ciphertext)
	if err != nil {
		return nil, fmt.Errorf("unable to decrypt API response: %w", err)
	}
	response := &Response{}
	if err := json.Unmarshal(plaintext, response); err != nil {
		return nil, fmt.Errorf("malformed API response: %w", err)
	}
	return response, nil
}

// signedQuery builds the sorted query string with the md5 signature the API
// expects: pairs joined with "||" and suffixed with the auth key.
func signedQuery(params map[string]string, authKey []byte) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, fmt.Sprintf("%v=%v", key, params[key]))
	}
	query := strings.Join(pairs, "&")

	signatureBody := strings.ReplaceAll(query, "&", "||") + "||" + string(authKey)
	signature := md5.Sum([]byte(signatureBody))
	return "?" + query + "&sign=" + hex.EncodeToString(signature[:])
}
