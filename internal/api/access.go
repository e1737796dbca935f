package api

import (
	"context"
	"fmt"
)

// GenerateAccessCode asks the server for the current member's check-in code.
func (c *Client) GenerateAccessCode(ctx context.Context) (*AccessCode, error) {
	var code AccessCode
	if err := c.post(ctx, "/auth/qr-generate", nil, &code); err != nil {
		return nil, err
	}
	return &code, nil
}

// ScanQR submits scanned QR data. An unknown or inactive code is a
// ScanResult with Valid false, not an error.
func (c *Client) ScanQR(ctx context.Context, data string) (*ScanResult, error) {
	var res ScanResult
	if err := c.post(ctx, "/qr/scan", ScanRequest{QRCode: data}, &res); err != nil {
		return nil, fmt.Errorf("scanning code: %w", err)
	}
	return &res, nil
}

// VerifyAccess checks whether memberID may use club facilities.
func (c *Client) VerifyAccess(ctx context.Context, memberID string) (*AccessCheck, error) {
	var res AccessCheck
	if err := c.post(ctx, "/qr/verify", VerifyRequest{MemberID: memberID}, &res); err != nil {
		return nil, fmt.Errorf("verifying member %s: %w", memberID, err)
	}
	return &res, nil
}
