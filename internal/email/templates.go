package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"
)

type content struct {
	Subject string
	Plain   string
	HTML    string
}

var subjects = map[Type]string{
	TypeMagicLink:    "Your AR Car Rentals booking {{.BookingReference}}",
	TypeConfirmation: "Booking {{.BookingReference}} confirmed",
	TypeDecline:      "Booking {{.BookingReference}} could not be confirmed",
}

var plainBodies = map[Type]string{
	TypeMagicLink: `Thank you for booking with AR Car Rentals.
Your reference is {{.BookingReference}}.
{{with .BookingDetails}}Vehicle: {{.VehicleName}}
Pickup: {{.PickupDate.Format "Jan 2, 2006"}} at {{.PickupLocation}}
Return: {{.ReturnDate.Format "Jan 2, 2006"}}
{{end}}Track your booking: {{.MagicLink}}
`,
	TypeConfirmation: `Good news: booking {{.BookingReference}} is confirmed.
Track your booking: {{.MagicLink}}
`,
	TypeDecline: `We are sorry, booking {{.BookingReference}} could not be confirmed.
Reply to this email if you would like help with another vehicle or date.
`,
}

var htmlBodies = map[Type]string{
	TypeMagicLink: `<p>Thank you for booking with AR Car Rentals.</p>
<p>Your reference is <strong>{{.BookingReference}}</strong>.</p>
{{with .BookingDetails}}<ul><li>Vehicle: {{.VehicleName}}</li><li>Pickup: {{.PickupDate.Format "Jan 2, 2006"}} at {{.PickupLocation}}</li><li>Return: {{.ReturnDate.Format "Jan 2, 2006"}}</li></ul>
{{end}}<p><a href="{{.MagicLink}}">Track your booking</a></p>`,
	TypeConfirmation: `<p>Good news: booking <strong>{{.BookingReference}}</strong> is confirmed.</p>
<p><a href="{{.MagicLink}}">Track your booking</a></p>`,
	TypeDecline: `<p>We are sorry, booking <strong>{{.BookingReference}}</strong> could not be confirmed.</p>
<p>Reply to this email if you would like help with another vehicle or date.</p>`,
}

func render(msg Message) (content, error) {
	subject, ok := subjects[msg.EmailType]
	if !ok {
		return content{}, fmt.Errorf("unknown email type %q", msg.EmailType)
	}

	var out content
	var err error
	if out.Subject, err = execText(subject, msg); err != nil {
		return content{}, err
	}
	if out.Plain, err = execText(plainBodies[msg.EmailType], msg); err != nil {
		return content{}, err
	}

	tmpl, err := htmltemplate.New("html").Parse(htmlBodies[msg.EmailType])
	if err != nil {
		return content{}, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, msg); err != nil {
		return content{}, err
	}
	out.HTML = buf.String()
	return out, nil
}

func execText(text string, msg Message) (string, error) {
	tmpl, err := template.New("text").Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, msg); err != nil {
		return "", err
	}
	return buf.String(), nil
}
