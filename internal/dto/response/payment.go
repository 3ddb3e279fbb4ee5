package response

type PaymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
}
