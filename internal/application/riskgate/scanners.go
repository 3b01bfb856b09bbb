package riskgate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SecurityScan is the security-pattern verdict for one wallet address.
type SecurityScan struct {
	RiskScore   float64 `json:"risk_score"` // 0-100
	ThreatLevel string  `json:"threat_level"`
}

// HistoryScan is the transaction-history verdict for one wallet address.
type HistoryScan struct {
	ComplianceScore  float64 `json:"compliance_score"` // 0-100
	TransactionCount int     `json:"transaction_count"`
}

// SecurityScanner runs the external security-pattern scan.
type SecurityScanner interface {
	ScanAddress(ctx context.Context, walletAddress string) (*SecurityScan, error)
}

// HistoryScanner runs the external transaction-history scan.
type HistoryScanner interface {
	ScanHistory(ctx context.Context, walletAddress string) (*HistoryScan, error)
}

// HTTPScanner calls the wallet-reputation provider over HTTP. It implements
// both scanner interfaces.
type HTTPScanner struct {
	BaseURL string
	Client  *http.Client
}

func (s *HTTPScanner) ScanAddress(ctx context.Context, walletAddress string) (*SecurityScan, error) {
	var out SecurityScan
	if err := s.get(ctx, fmt.Sprintf("%s/v1/security/%s", s.BaseURL, walletAddress), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *HTTPScanner) ScanHistory(ctx context.Context, walletAddress string) (*HistoryScan, error) {
	var out HistoryScan
	if err := s.get(ctx, fmt.Sprintf("%s/v1/history/%s", s.BaseURL, walletAddress), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *HTTPScanner) get(ctx context.Context, url string, out interface{}) error {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return ErrScannerUnavailable
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ErrScannerUnavailable
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
