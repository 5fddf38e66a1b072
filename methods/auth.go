package methods

// AuthLogin exchanges account credentials for an API token.
type AuthLogin struct {
	Email    string
	Password string
}

func (m AuthLogin) BuildRequest() Request {
	return NewRequest("auth.login", map[string]any{
		"email":    m.Email,
		"password": m.Password,
	})
}
