package transport

import (
	"github.com/gatewei/gatewei/internal/content"
	"github.com/gatewei/gatewei/internal/vault"
	"github.com/gatewei/gatewei/internal/wei"
)

// ResourceResponse is the public metadata view of an on-chain resource.
// The content locator is withheld; it is only served through the
// access-gated content endpoint.
type ResourceResponse struct {
	ResourceID     string `json:"resourceId"`
	PriceWei       string `json:"priceWei"`
	PriceEther     string `json:"priceEther"`
	LifetimeAccess bool   `json:"lifetimeAccess"`
	Active         bool   `json:"active"`
	ContentType    string `json:"contentType"`
	PaymentCount   string `json:"paymentCount"`
	TotalRevenue   string `json:"totalRevenueWei"`
}

// FromResource converts decoded contract metadata to the wire form.
func FromResource(resourceID string, res *vault.Resource) ResourceResponse {
	return ResourceResponse{
		ResourceID:     resourceID,
		PriceWei:       res.Price.String(),
		PriceEther:     wei.FormatEther(res.Price),
		LifetimeAccess: res.LifetimeAccess,
		Active:         res.Active,
		ContentType:    res.ContentType,
		PaymentCount:   res.PaymentCount.String(),
		TotalRevenue:   res.TotalRevenue.String(),
	}
}

// AccessResponse reports the on-chain access check for one wallet.
type AccessResponse struct {
	ResourceID string `json:"resourceId"`
	Wallet     string `json:"wallet"`
	HasAccess  bool   `json:"hasAccess"`
}

// ContentResponse is the classified content descriptor.
type ContentResponse struct {
	Kind       string `json:"kind"`
	Locator    string `json:"locator"`
	PlatformID string `json:"platformId,omitempty"`
}

// FromDescriptor converts a content descriptor to the wire form.
func FromDescriptor(desc *content.Descriptor) ContentResponse {
	return ContentResponse{
		Kind:       string(desc.Kind),
		Locator:    desc.Locator,
		PlatformID: desc.PlatformID,
	}
}
