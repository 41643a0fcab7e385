package ledger

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/artvault/internal/common"
	"github.com/dmitrijs2005/artvault/internal/server/models"
)

type paymentDTO struct {
	Reference string `json:"reference"`
	Amount    uint64 `json:"amount"`
	Memo      uint64 `json:"memo"`
	From      string `json:"from"`
}

type paymentsResponse struct {
	Payments []paymentDTO `json:"payments"`
}

// HTTPClient queries a ledger index over HTTP:
//
//	GET {base}/v1/payments?subaccount=<hex>&memo=<n>
type HTTPClient struct {
	base string
	hc   *http.Client
}

func NewHTTPClient(base string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPClient{base: base, hc: hc}
}

func (c *HTTPClient) FindPayment(ctx context.Context, inv models.Invoice) (*models.Payment, error) {
	q := url.Values{}
	q.Set("subaccount", hex.EncodeToString(inv.Subaccount))
	q.Set("memo", strconv.FormatUint(inv.Memo, 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/v1/payments?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrLedgerUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, common.ErrPaymentNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", common.ErrLedgerUnavailable, resp.StatusCode)
	}

	var body paymentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", common.ErrLedgerUnavailable, err)
	}

	payments := make([]models.Payment, 0, len(body.Payments))
	for _, p := range body.Payments {
		payments = append(payments, models.Payment{Reference: p.Reference, Amount: p.Amount, Memo: p.Memo, From: p.From})
	}

	p, ok := settles(inv, payments)
	if !ok {
		return nil, common.ErrPaymentNotFound
	}
	return p, nil
}
