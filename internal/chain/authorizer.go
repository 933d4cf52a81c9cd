package chain

import "context"

// StaticAuthorizer is a domain.Authorizer backed by a fixed admin list from
// configuration.
type StaticAuthorizer struct {
	admins map[string]bool
}

// NewStaticAuthorizer creates an authorizer that admits exactly the given
// accounts.
func NewStaticAuthorizer(admins []string) *StaticAuthorizer {
	set := make(map[string]bool, len(admins))
	for _, a := range admins {
		set[a] = true
	}
	return &StaticAuthorizer{admins: set}
}

// IsAdmin reports whether the account may perform administrative actions.
func (a *StaticAuthorizer) IsAdmin(ctx context.Context, account string) (bool, error) {
	return a.admins[account], nil
}
