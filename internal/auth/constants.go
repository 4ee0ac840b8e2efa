package auth

const (
	// ContextKeyPrincipal is the echo.Context key holding the resolved Principal.
	ContextKeyPrincipal = "principal"

	headerAuthorization = "Authorization"
	bearerScheme        = "bearer"
	authHeaderParts     = 2

	dummyPassword = "timing-equalisation-password"
)

const (
	msgAuthenticationRequired = "authentication required"
	msgInsufficientRole       = "insufficient role"
	msgSubjectMissing         = "token has no subject"
	msgTTLMustBePositive      = "token ttl must be positive"
	msgSecretRequired         = "token secret is required"
	msgUnexpectedSigningFmt   = "unexpected signing method: %v"
	msgUserLookupFailed       = "failed to look up user"
	msgCreateUserFailed       = "failed to create user"
	msgHashPasswordFailed     = "failed to hash password"
	msgIssueTokenFailed       = "failed to issue token"
	msgUpdatePasswordFailed   = "failed to update password"
	msgDummyHashFailedFmt     = "failed to prepare dummy hash: %w"
	msgInvalidPatternFmt      = "invalid rule pattern %q: %s"
	msgUnknownRoleFmt         = "rule %q requires unknown role %q"
	msgUnknownRequirementFmt  = "rule %q has unknown requirement %q"
	msgReadPolicyFileFmt      = "failed to read policy file: %w"
	msgParsePolicyFileFmt     = "failed to parse policy file: %w"
)
