package handler

const (
	errInternalServer     = "Internal server error"
	errUserNotFound       = "User not found"
	errEmailTaken         = "Email is already in use"
	errInvalidCredentials = "Invalid email or password"
	errInvalidLoan        = "Loan must have distinct parties and a positive amount"
	errForbidden          = "Only a party to the loan may do this"
	errDispatchFailed     = "Verification email could not be sent"
)
