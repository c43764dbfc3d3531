package email

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/pkg/errors"
)

// Template names an HTML template under templates/.
type Template string

const (
	TemplateMortalityAlert    Template = "mortality_alert"
	TemplateOnboardingRequest Template = "onboarding_request"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("email").Option("missingkey=zero").ParseFS(templateFS, "templates/*.html"))

// Render executes the named template with data.
func Render(name Template, data map[string]string) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, string(name)+".html", data); err != nil {
		return "", errors.Wrapf(err, "failed to execute email template %s", name)
	}
	return body.String(), nil
}
