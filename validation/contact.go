package validation

// ContactMessage is a public contact form submission.
type ContactMessage struct {
	FirstName string
	LastName  string
	Email     string
	Message   string
}

func ParseContact(p Payload) Result[ContactMessage] {
	v := Violations{}
	m := ContactMessage{
		FirstName: p.Get("firstName"),
		LastName:  p.Get("lastName"),
		Email:     p.Get("email"),
		Message:   p.Get("message"),
	}
	Required("firstName", m.FirstName, v)
	Required("lastName", m.LastName, v)
	if Required("email", m.Email, v) {
		Email("email", m.Email, v)
	}
	MinLength("message", m.Message, 10, "message_min", v)
	maxLengths(v,
		limit{"firstName", m.FirstName, 255},
		limit{"lastName", m.LastName, 255},
		limit{"email", m.Email, 255},
	)
	return finish(m, v)
}

// ParseSignIn validates the email used to request a magic link.
func ParseSignIn(p Payload) Result[string] {
	v := Violations{}
	email := p.Get("email")
	if Required("email", email, v) {
		Email("email", email, v)
	}
	MaxLength("email", email, 255, v)
	return finish(email, v)
}
