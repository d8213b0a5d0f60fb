package types

// Mail is an outgoing transactional email
type Mail struct {
	FromName string
	From     string
	To       string
	Subject  string
	BodyHTML string
	BodyText string
}
