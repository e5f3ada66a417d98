package dto

type AddCardRequest struct {
	CardToken         string `json:"cardToken"`
	VerificationToken string `json:"verificationToken"`
	CardholderName    string `json:"cardholderName"`
}
