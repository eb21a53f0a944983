package dto

// AccountOutput is the profile returned on successful authentication: the
// verified account with the credential stripped, plus the session token.
type AccountOutput struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Pets      int    `json:"pets"`
	Devices   int    `json:"devices"`
	AuthToken string `json:"authToken"`
}
