package handlers

import "time"

// SignupRequest is the request body for registering an account.
type SignupRequest struct {
	Body struct {
		Email    string `doc:"Account email"    example:"ann@example.com" format:"email" json:"email"`
		Password string `doc:"Account password" example:"hunter22"        minLength:"1"  json:"password"`
		Username string `doc:"Display name"     example:"ann"             minLength:"1"  json:"username"`
	}
}

// SigninRequest is the request body for signing in.
type SigninRequest struct {
	Body struct {
		Email    string `doc:"Account email"    example:"ann@example.com" format:"email" json:"email"`
		Password string `doc:"Account password" example:"hunter22"        json:"password"`
	}
}

// SessionResponse is returned by signup and signin.
type SessionResponse struct {
	Body struct {
		ID          int64  `doc:"User id"                 example:"1"               json:"id"`
		Email       string `doc:"Account email"           example:"ann@example.com" json:"email"`
		Username    string `doc:"Display name"            example:"ann"             json:"username"`
		AccessToken string `doc:"Bearer token for the API"                          json:"access_token"`
	}
}

// UserInfo describes an account.
type UserInfo struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// MeResponse is the response for the current user endpoint.
type MeResponse struct {
	Body UserInfo
}

// CreateShortURLRequest is the request body for creating a short URL.
type CreateShortURLRequest struct {
	Body struct {
		TargetURL string `doc:"The URL to shorten; https:// is assumed when no scheme is given" example:"example.com/very/long/path" json:"target_url"`
	}
}

// URLInfo describes a short URL. URL is the public key and AdminURL the secret key.
type URLInfo struct {
	TargetURL string `doc:"The target URL"              example:"https://example.com/very/long/path" json:"target_url"`
	Clicks    int64  `doc:"Number of recorded visits"   example:"0"                                  json:"clicks"`
	IsActive  bool   `doc:"Whether the key redirects"   example:"true"                               json:"is_active"`
	URL       string `doc:"The short key"               example:"abcde"                              json:"url"`
	AdminURL  string `doc:"The secret key for admin use" example:"abcde_qwertyui"                    json:"admin_url"`
}

// CreateShortURLResponse is the response for a successfully created short URL.
type CreateShortURLResponse struct {
	Body URLInfo
}

// ListURLsResponse lists the short URLs of the current user.
type ListURLsResponse struct {
	Body []URLInfo
}

// RedirectRequest is the request for redirecting a short URL.
type RedirectRequest struct {
	Key string `doc:"The short key" example:"abcde" path:"key"`
}

// RedirectResponse sends the client to the target URL.
type RedirectResponse struct {
	Status   int
	Location string `doc:"The target URL" header:"Location"`
}

// AdminRequest addresses a short URL by its secret key.
type AdminRequest struct {
	SecretKey string `doc:"The secret key" example:"abcde_qwertyui" path:"secret_key"`
}

// AdminInfoResponse is the admin view of a short URL.
type AdminInfoResponse struct {
	Body struct {
		URLInfo

		IsGuest   bool      `doc:"Created without an account" json:"is_guest"`
		CreatedAt time.Time `doc:"Creation time"              json:"created_at"`
	}
}

// VisitorInfo is one recorded traversal of a short URL.
type VisitorInfo struct {
	IPAddress string    `doc:"Client address"             json:"ip_address"`
	UserAgent string    `doc:"Client User-Agent header"   json:"user_agent"`
	VisitedAt time.Time `doc:"When the redirect happened" json:"visited_at"`
}

// ListVisitorsResponse lists the visitors of a short URL, oldest first.
type ListVisitorsResponse struct {
	Body []VisitorInfo
}

// DeactivateAccountResponse confirms an account deactivation.
type DeactivateAccountResponse struct {
	Body struct {
		Detail string `example:"Account deactivated" json:"detail"`
	}
}

// DeleteURLResponse confirms a deactivation.
type DeleteURLResponse struct {
	Body struct {
		Detail string `example:"Successfully deleted shortened URL for 'https://example.com'" json:"detail"`
	}
}
