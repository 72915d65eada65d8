// Package template assembles the structured terms document a contract is
// rendered from, and applies amendment changes to it.
package template

import (
	"fmt"
	"strings"
	"time"

	"github.com/armand/immo-contracts/pkg/models"
)

// Party holds the identity fields embedded in the contract document.
type Party struct {
	UserId   string `json:"user_id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address,omitempty"`
}

// Property holds the property fields embedded in the contract document.
type Property struct {
	Id      string `json:"id"`
	Title   string `json:"title"`
	Address string `json:"address"`
	City    string `json:"city,omitempty"`
}

// Terms is the caller-supplied field set for a new contract. Zero values are
// filled with defaults by Build.
type Terms struct {
	MonthlyRent    int64      `json:"monthly_rent,omitempty"`
	Deposit        int64      `json:"deposit,omitempty"`
	SalePrice      int64      `json:"sale_price,omitempty"`
	PaymentDay     int        `json:"payment_day,omitempty"`
	DurationMonths int        `json:"duration_months,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	TacitRenewal   *bool      `json:"tacit_renewal,omitempty"`
	NoticeMonths   int        `json:"notice_months,omitempty"`
}

// Input carries everything Build needs to assemble a contract document.
type Input struct {
	Type     models.ContractType
	Property Property
	Landlord Party // seller on sale contracts
	Tenant   *Party
	Buyer    *Party
	Terms    Terms
}

// Build assembles the template_data document for a new contract, applying
// defaults: deposit 2x monthly rent on location contracts, payment day 1,
// tacit renewal with a 3 month notice.
func Build(in Input) (map[string]any, error) {
	switch in.Type {
	case models.ContractLocation:
		if in.Tenant == nil {
			return nil, fmt.Errorf("location contract requires a tenant")
		}
		if in.Terms.MonthlyRent <= 0 {
			return nil, fmt.Errorf("location contract requires a positive monthly_rent")
		}
	case models.ContractSaleLand, models.ContractSaleProperty:
		if in.Buyer == nil {
			return nil, fmt.Errorf("sale contract requires a buyer")
		}
		if in.Terms.SalePrice <= 0 {
			return nil, fmt.Errorf("sale contract requires a positive sale_price")
		}
	default:
		return nil, fmt.Errorf("unknown contract type %q", in.Type)
	}

	parties := map[string]any{
		"landlord": partyDoc(in.Landlord),
	}
	if in.Tenant != nil {
		parties["tenant"] = partyDoc(*in.Tenant)
	}
	if in.Buyer != nil {
		parties["buyer"] = partyDoc(*in.Buyer)
	}

	terms := map[string]any{}
	switch in.Type {
	case models.ContractLocation:
		deposit := in.Terms.Deposit
		if deposit == 0 {
			deposit = 2 * in.Terms.MonthlyRent
		}
		paymentDay := in.Terms.PaymentDay
		if paymentDay == 0 {
			paymentDay = 1
		}
		tacit := true
		if in.Terms.TacitRenewal != nil {
			tacit = *in.Terms.TacitRenewal
		}
		noticeMonths := in.Terms.NoticeMonths
		if noticeMonths == 0 {
			noticeMonths = 3
		}
		terms["monthly_rent"] = in.Terms.MonthlyRent
		terms["deposit"] = deposit
		terms["payment_day"] = paymentDay
		terms["renewal"] = map[string]any{
			"tacit":         tacit,
			"notice_months": noticeMonths,
		}
		if in.Terms.DurationMonths > 0 {
			terms["duration_months"] = in.Terms.DurationMonths
		}
	case models.ContractSaleLand, models.ContractSaleProperty:
		terms["sale_price"] = in.Terms.SalePrice
	}
	if in.Terms.StartDate != nil {
		terms["start_date"] = in.Terms.StartDate.Format("2006-01-02")
	}

	return map[string]any{
		"type": string(in.Type),
		"property": map[string]any{
			"id":      in.Property.Id,
			"title":   in.Property.Title,
			"address": in.Property.Address,
			"city":    in.Property.City,
		},
		"parties": parties,
		"terms":   terms,
	}, nil
}

func partyDoc(p Party) map[string]any {
	return map[string]any{
		"user_id":   p.UserId,
		"full_name": p.FullName,
		"phone":     p.Phone,
		"address":   p.Address,
	}
}

// ApplyChanges deep-merges a set of dotted-path changes onto a template
// document and returns the merged copy. The original document is not mutated,
// so callers can snapshot it as a version before persisting the result.
// A path like "terms.monthly_rent" creates intermediate maps as needed.
func ApplyChanges(data map[string]any, changes map[string]any) map[string]any {
	merged := deepCopy(data)
	for path, value := range changes {
		setPath(merged, strings.Split(path, "."), value)
	}
	return merged
}

func setPath(doc map[string]any, path []string, value any) {
	if len(path) == 1 {
		doc[path[0]] = value
		return
	}
	child, ok := doc[path[0]].(map[string]any)
	if !ok {
		child = map[string]any{}
		doc[path[0]] = child
	}
	setPath(child, path[1:], value)
}

func deepCopy(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if child, ok := v.(map[string]any); ok {
			out[k] = deepCopy(child)
		} else {
			out[k] = v
		}
	}
	return out
}

// AmountAt extracts an integer amount at a dotted path inside the document.
// Amendment payloads arrive through JSON, so numeric values may be float64.
func AmountAt(data map[string]any, path string) int64 {
	var cur any = data
	for _, part := range strings.Split(path, ".") {
		doc, ok := cur.(map[string]any)
		if !ok {
			return 0
		}
		cur = doc[part]
	}
	switch n := cur.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
