package recognition

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
)

type scoreRequest struct {
	SubmissionID int64  `json:"submission_id"`
	MediaType    string `json:"media_type"`
	ContentHash  string `json:"content_hash"`
	Data         []byte `json:"data"`
}

type scoreResponse struct {
	Originality uint16 `json:"originality"`
	Visibility  uint16 `json:"visibility"`
	Reason      string `json:"reason"`
}

// HTTPScorer posts the asset to {base}/v1/score.
type HTTPScorer struct {
	base string
	hc   *http.Client
}

func NewHTTPScorer(base string, hc *http.Client) *HTTPScorer {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPScorer{base: base, hc: hc}
}

func (s *HTTPScorer) Score(ctx context.Context, a Asset) (Scores, error) {
	body, err := json.Marshal(scoreRequest{
		SubmissionID: a.SubmissionID,
		MediaType:    a.MediaType,
		ContentHash:  hex.EncodeToString(a.ContentHash),
		Data:         a.Data,
	})
	if err != nil {
		return Scores{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.base+"/v1/score", bytes.NewReader(body))
	if err != nil {
		return Scores{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.hc.Do(req)
	if err != nil {
		return Scores{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Scores{}, fmt.Errorf("score: status %d", resp.StatusCode)
	}

	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Scores{}, fmt.Errorf("score: decode: %w", err)
	}
	return Scores{Originality: out.Originality, Visibility: out.Visibility, Reason: out.Reason}, nil
}
