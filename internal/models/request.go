package models

import "encoding/json"

// AnalysisRequest identifies the asset an analysis is requested for. It is
// built once per resolved selection and never mutated afterwards.
type AnalysisRequest struct {
	cryptoID string
	symbol   string
}

func NewAnalysisRequest(cryptoID, symbol string) AnalysisRequest {
	return AnalysisRequest{cryptoID: cryptoID, symbol: symbol}
}

// RequestFromResult builds the request for a selected search result.
func RequestFromResult(r SearchResult) AnalysisRequest {
	return NewAnalysisRequest(r.ID, r.Symbol)
}

func (r AnalysisRequest) CryptoID() string { return r.cryptoID }

func (r AnalysisRequest) Symbol() string { return r.symbol }

// Payload returns the wire body of the analyze call.
func (r AnalysisRequest) Payload() AnalyzePayload {
	return AnalyzePayload{CryptoID: r.cryptoID, Symbol: r.symbol}
}

func (r AnalysisRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Payload())
}

type AnalyzePayload struct {
	CryptoID string `json:"crypto_id" validate:"required,max=128"`
	Symbol   string `json:"symbol" validate:"max=32"`
}
