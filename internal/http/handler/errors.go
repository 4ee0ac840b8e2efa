package handler

const (
	jsonKeyMessage = "message"

	paramID = "id"

	tokenTypeBearer = "Bearer"

	msgContentTypeJSONRequired = "content type must be application/json"
	msgInvalidRequestBody      = "invalid request body"
	msgInvalidUserID           = "invalid user id"
	msgIdentifierRequired      = "email, username or identifier is required"
	msgPasswordRequired        = "password is required"
)
