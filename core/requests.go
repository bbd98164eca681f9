package core

// Wire request bodies shared by the server handlers and the Go client.

type ShortenRequest struct {
	URL string `json:"url"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type GetUrlsRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

type RemoveUrlRequest struct {
	ID int64 `json:"id"`
}

type UpdateNickRequest struct {
	Nick string `json:"nick"`
}

type GetClicksRequest struct {
	UrlID  int64  `json:"urlId"`
	Period Period `json:"period"`
}
