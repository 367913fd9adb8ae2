package handler

// Protocol short codes. Clients branch on these literal bodies, which mostly
// ride on status 202 regardless of the actual failure mode.
const (
	codeUnverified    = "UNV" // unverified account or invalid session
	codeInvalidLogin  = "ILD" // incorrect login details
	codeUserCreated   = "UCS" // user created successfully
	codeUsernameTaken = "UNT"
	codeEmailTaken    = "ET"
	codeVerified      = "UVS" // user verified successfully
	codeUnknownToken  = "UKE" // unknown or already-redeemed verification token
)

const serverErrorBody = "Server error occurred"
