// Package riskgate screens crypto wallets before a payment intent may open.
// It is a one-shot synchronous gate: evaluated once between admission and
// intent creation, never re-evaluated later in the attempt.
package riskgate

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Threat levels reported by the security scan.
const (
	ThreatLow    = "LOW"
	ThreatMedium = "MEDIUM"
	ThreatHigh   = "HIGH"
)

// Verdict is the combined result of both scans. Warning is set for MEDIUM
// threat: surfaced to the user, not blocking.
type Verdict struct {
	WalletAddress    string  `json:"wallet_address"`
	RiskScore        float64 `json:"risk_score"`
	ThreatLevel      string  `json:"threat_level"`
	ComplianceScore  float64 `json:"compliance_score"`
	TransactionCount int     `json:"transaction_count"`
	Warning          string  `json:"warning,omitempty"`
}

type Service struct {
	Security           SecurityScanner
	History            HistoryScanner
	ComplianceMinScore float64
	Timeout            time.Duration
}

// Evaluate runs both external scans concurrently; both must return before a
// verdict is produced. HIGH threat or a compliance score below the policy
// floor blocks the attempt with ErrWalletRiskBlocked; the verdict is still
// returned so the rejection can explain itself.
func (s *Service) Evaluate(ctx context.Context, walletAddress string) (*Verdict, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	var security *SecurityScan
	var history *HistoryScan

	g.Go(func() error {
		scan, err := s.Security.ScanAddress(ctx, walletAddress)
		if err != nil {
			return err
		}
		security = scan
		return nil
	})
	g.Go(func() error {
		scan, err := s.History.ScanHistory(ctx, walletAddress)
		if err != nil {
			return err
		}
		history = scan
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	verdict := &Verdict{
		WalletAddress:    walletAddress,
		RiskScore:        security.RiskScore,
		ThreatLevel:      security.ThreatLevel,
		ComplianceScore:  history.ComplianceScore,
		TransactionCount: history.TransactionCount,
	}

	if verdict.ThreatLevel == ThreatHigh || verdict.ComplianceScore < s.ComplianceMinScore {
		return verdict, ErrWalletRiskBlocked
	}
	if verdict.ThreatLevel == ThreatMedium {
		verdict.Warning = "Wallet shows elevated risk patterns; proceed with caution"
	}
	return verdict, nil
}
