package app

// CheckoutRedirect is the domain response for a created checkout session.
// The HTTP layer will translate this into JSON.
type CheckoutRedirect struct {
	URL string `json:"url"`
}

// AccessStatus reports whether the identity has completed payment.
type AccessStatus struct {
	Paid bool `json:"paid"`
}
