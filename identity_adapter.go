package identity

var _ Identity = &AccountIdentity{}

// AccountIdentity adapts a stored Account to the Identity interface.
type AccountIdentity struct {
	account *Account
}

// NewAccountIdentity wraps an account record.
func NewAccountIdentity(account *Account) *AccountIdentity {
	return &AccountIdentity{account: account}
}

func (a *AccountIdentity) ID() string {
	if a.account == nil {
		return ""
	}
	return a.account.ID.String()
}

func (a *AccountIdentity) Email() string {
	if a.account == nil {
		return ""
	}
	return a.account.Email
}

func (a *AccountIdentity) Role() Role {
	if a.account == nil {
		return RolePending
	}
	return NormalizeRole(string(a.account.Role))
}
