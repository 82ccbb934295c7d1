package model

type GetMeRequest struct{}

type GetMeResponse struct {
	User User `json:"user"`
}

type GetUserRequest struct {
	UserID string `json:"user_id"`
}

type GetUserResponse struct {
	User User `json:"user"`
}

type UpdateMeRequest struct {
	// Password is the current password, required for every change.
	Password      string  `json:"password"`
	Username      *string `json:"username"`
	Discriminator *string `json:"discriminator"`
	Email         *string `json:"email"`
	About         *string `json:"about"`
	NewPassword   *string `json:"new_password"`
}

type UpdateMeResponse struct {
	User User `json:"user"`
}
