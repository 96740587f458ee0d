package client

import "net/url"

// SignupFlow distinguishes a plain sign-up from invitation acceptance
type SignupFlow int

const (
	ModeStandard SignupFlow = iota
	ModeInvitation
)

// Query parameters set by the identity provider on invitation links
const (
	ticketParam          = "__clerk_ticket"
	invitationTokenParam = "__clerk_invitation_token"
)

// SignupMode inspects sign-up page query parameters: either invitation
// parameter present means the form runs in invitation-acceptance mode and
// reports "invitation accepted" on success instead of "account created".
func SignupMode(q url.Values) SignupFlow {
	if q.Has(ticketParam) || q.Has(invitationTokenParam) {
		return ModeInvitation
	}
	return ModeStandard
}

// InvitationToken returns the invitation token from sign-up query
// parameters, or "" when absent
func InvitationToken(q url.Values) string {
	if t := q.Get(invitationTokenParam); t != "" {
		return t
	}
	return q.Get(ticketParam)
}
