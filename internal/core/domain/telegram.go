package domain

// TelegramAuth is the payload produced by the Telegram login widget.
// Optional fields are empty when the widget did not send them.
type TelegramAuth struct {
	ID        string
	FirstName string
	LastName  string
	Username  string
	PhotoURL  string
	AuthDate  string
	Hash      string
}

// Fields returns every signed field present in the payload, keyed by its
// widget name. The hash itself is never included.
func (a TelegramAuth) Fields() map[string]string {
	fields := map[string]string{
		"id":         a.ID,
		"first_name": a.FirstName,
	}
	optional := map[string]string{
		"last_name": a.LastName,
		"username":  a.Username,
		"photo_url": a.PhotoURL,
		"auth_date": a.AuthDate,
	}
	for k, v := range optional {
		if v != "" {
			fields[k] = v
		}
	}
	return fields
}
