package model

// ChannelID identifies this integration on every AA network call
const ChannelID = "finsense"

// Header is the fixed header block required on every AA network request
type Header struct {
	RID       string `json:"rid"`
	TS        string `json:"ts"`
	ChannelID string `json:"channelId"`
}

// Envelope wraps a payload with the AA network header
type Envelope[T any] struct {
	Header Header `json:"header"`
	Body   T      `json:"body"`
}

// LoginBody is the credential payload for User/Login
type LoginBody struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

// LoginResult is the body returned by User/Login
type LoginResult struct {
	Token string `json:"token"`
}
