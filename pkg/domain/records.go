package domain

// User is a row of the users table.
type User struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CreateTime int64  `json:"create_time"`
}

// InboxMessage is a stored email, shown by the inbox pages.
type InboxMessage struct {
	ID           int64  `json:"id"`
	FromMail     string `json:"from_mail"`
	ToMail       string `json:"to_mail"`
	SendDate     string `json:"send_date"`
	Subject      string `json:"subject"`
	PlainContent string `json:"plain_content"`
	HTMLContent  string `json:"html_content"`
	CreateTime   int64  `json:"create_time"`
}
