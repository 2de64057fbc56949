/*
 * BankID session
 * Copyright (C) 2026. eID foundation
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

// Package bankid implements the services.Provider interface against the
// identity-provider REST surface. Transport details stop here, callers only
// see request/response shapes.
package bankid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/eid-foundation/bankid-session/pkg/services"
)

const (
	collectPath = "/api/Collect"
	authPath    = "/api/Auth"
	signPath    = "/api/Sign"
	uploadPath  = "/api/Sign/upload"
)

// Config holds the HTTP client settings for the provider.
type Config struct {
	// Address is the base URL of the provider, e.g. https://localhost:7080
	Address string
	Timeout time.Duration
}

// Client talks to the identity provider. It implements services.Provider.
type Client struct {
	config     Config
	httpClient *http.Client
}

var _ services.Provider = (*Client)(nil)

// NewClient returns a provider client for the given config.
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// StartAuthentication starts an authentication order.
func (c *Client) StartAuthentication(ctx context.Context, request services.StartAuthenticationRequest) (*services.Order, error) {
	return c.startOrder(ctx, authPath, request)
}

// StartSigning starts a signing order carrying the encoded user-visible data.
func (c *Client) StartSigning(ctx context.Context, request services.StartSigningRequest) (*services.Order, error) {
	return c.startOrder(ctx, signPath, request)
}

func (c *Client) startOrder(ctx context.Context, path string, request interface{}) (*services.Order, error) {
	body, err := c.postJSON(ctx, path, request)
	if err != nil {
		return nil, errors.Wrap(err, "could not start order")
	}

	result := services.StartOrderResult{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, errors.Wrap(err, "could not parse order response")
	}

	return &services.Order{
		OrderRef:       result.OrderRef,
		AutoStartToken: result.AutoStartToken,
		QrStartToken:   result.QrStartToken,
		QrStartSecret:  result.QrStartSecret,
		StartedAt:      time.Now(),
	}, nil
}

// Collect reports the current status of an order.
func (c *Client) Collect(ctx context.Context, orderRef string) (*services.CollectResult, error) {
	body, err := c.postJSON(ctx, collectPath, services.CollectRequest{OrderRef: orderRef})
	if err != nil {
		return nil, errors.Wrap(err, "collect failed")
	}

	envelope := services.CollectEnvelope{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.Wrap(err, "could not parse collect response")
	}
	return envelope.AsCollectResult(), nil
}

// FetchDocument retrieves the source document to be signed.
func (c *Client) FetchDocument(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, c.config.Address+signPath, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req.WithContext(ctx))
}

// ExchangeDocument uploads the original document together with the signer
// identity and returns the signed counterpart.
func (c *Client) ExchangeDocument(ctx context.Context, document []byte, signer services.SignerIdentity) ([]byte, error) {
	buffer := &bytes.Buffer{}
	writer := multipart.NewWriter(buffer)

	filePart, err := writer.CreateFormFile("file", "file.pdf")
	if err != nil {
		return nil, err
	}
	if _, err := filePart.Write(document); err != nil {
		return nil, err
	}

	signerJSON, err := json.Marshal(signer)
	if err != nil {
		return nil, err
	}
	if err := writer.WriteField("user", string(signerJSON)); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.config.Address+uploadPath, buffer)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	signed, err := c.do(req.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "document exchange failed")
	}
	return signed, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.config.Address+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req.WithContext(ctx))
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	body, err := ioutil.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, fmt.Errorf("provider returned status %d for %s", response.StatusCode, req.URL.Path)
	}
	return body, nil
}
