// Package transport provides HTTP request/response types for the verification domain.
package transport

import (
	"time"

	"github.com/gatewei/gatewei/internal/records"
	"github.com/gatewei/gatewei/internal/verify/domain"
	"github.com/gatewei/gatewei/internal/wei"
)

// VerifyRequest is the HTTP request body for verifying a payment.
type VerifyRequest struct {
	TxHash string `json:"txHash"`
}

// VerifyResponse is the response for a verification request.
type VerifyResponse struct {
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
	TxHash      string `json:"txHash"`
	Payer       string `json:"payer,omitempty"`
	Beneficiary string `json:"beneficiary,omitempty"`
	AmountWei   string `json:"amountWei,omitempty"`
	AmountEther string `json:"amountEther,omitempty"`
	VerifiedAt  string `json:"verifiedAt,omitempty"`
}

// FromVerdict converts a domain verdict to the wire form.
func FromVerdict(txHash string, v *domain.Verdict) VerifyResponse {
	resp := VerifyResponse{
		Status: string(v.Outcome),
		Reason: v.Reason,
		TxHash: txHash,
	}
	if v.Outcome == domain.OutcomeVerified {
		resp.Payer = v.Payer
		resp.Beneficiary = v.Beneficiary
		resp.AmountWei = v.Amount.String()
		resp.AmountEther = wei.FormatEther(v.Amount)
		resp.VerifiedAt = v.VerifiedAt.Format(time.RFC3339)
	}
	return resp
}

// RecordResponse is one stored verification record.
type RecordResponse struct {
	TxHash      string `json:"txHash"`
	Payer       string `json:"payer"`
	Beneficiary string `json:"beneficiary"`
	AmountWei   string `json:"amountWei"`
	AmountEther string `json:"amountEther"`
	VerifiedAt  string `json:"verifiedAt"`
}

// FromRecord converts a stored record to the wire form.
func FromRecord(rec records.VerificationRecord) RecordResponse {
	return RecordResponse{
		TxHash:      rec.TxHash,
		Payer:       rec.Payer,
		Beneficiary: rec.Beneficiary,
		AmountWei:   rec.Amount.String(),
		AmountEther: wei.FormatEther(rec.Amount),
		VerifiedAt:  rec.VerifiedAt.Format(time.RFC3339),
	}
}

// RecordsResponse wraps the record listing.
type RecordsResponse struct {
	Records []RecordResponse `json:"records"`
	Count   int              `json:"count"`
}
