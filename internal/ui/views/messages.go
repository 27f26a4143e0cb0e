package views

// StatusMsg carries a status line for the footer
type StatusMsg struct {
	Message string
}

// ErrorMsg carries a failed action for the footer
type ErrorMsg struct {
	Err error
}
