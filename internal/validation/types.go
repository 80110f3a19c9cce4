package validation

// VerifyQuery is the subscription handshake Meta sends to GET /webhook.
type VerifyQuery struct {
	Mode      string `form:"hub.mode" validate:"required"`
	Token     string `form:"hub.verify_token" validate:"required"`
	Challenge string `form:"hub.challenge" validate:"required"`
}

// OrderURI addresses one persisted order.
type OrderURI struct {
	OrderID string `uri:"id" validate:"required,uuid"`
}
