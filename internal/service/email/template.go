// internal/service/email/template.go
package email

import (
	"bytes"
	"fmt"
	"html/template"

	"adscreen-service/internal/queue"
)

const brand = "AdScreen"

var layout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8" />
	<title>{{.Brand}}</title>
	<style>
		body { font-family: Tahoma, Arial, sans-serif; background-color: #f6f8fa; padding: 30px; }
		.container { max-width: 600px; margin: auto; background: #fff; border-radius: 10px; overflow: hidden; box-shadow: 0 2px 5px rgba(0,0,0,0.1); }
		.header { background: #0b6e4f; color: white; text-align: center; padding: 20px; font-size: 22px; font-weight: bold; }
		.footer { background: #f1f1f1; color: #555; text-align: center; padding: 15px; font-size: 13px; }
		.body { padding: 25px; color: #333; line-height: 1.6; }
		.ar { direction: rtl; text-align: right; }
		hr { border: none; border-top: 1px solid #eee; margin: 20px 0; }
	</style>
</head>
<body>
<div class="container">
	<div class="header">{{.Brand}}</div>
	<div class="body">
		{{if .MessageAr}}<div class="ar"><h3>{{.SubjectAr}}</h3><p>{{.MessageAr}}</p></div>{{end}}
		{{if and .MessageAr .MessageEn}}<hr />{{end}}
		{{if .MessageEn}}<div><h3>{{.SubjectEn}}</h3><p>{{.MessageEn}}</p></div>{{end}}
	</div>
	<div class="footer"><p>&copy; {{.Brand}}</p></div>
</div>
</body>
</html>`))

// Render builds the subject line and HTML body of a job. Arabic comes first.
func Render(job queue.EmailJob) (string, string, error) {
	subject := job.SubjectAr
	switch {
	case subject == "":
		subject = job.SubjectEn
	case job.SubjectEn != "":
		subject = job.SubjectAr + " | " + job.SubjectEn
	}
	if subject == "" {
		subject = brand
	}

	var buf bytes.Buffer
	err := layout.Execute(&buf, struct {
		Brand string
		queue.EmailJob
	}{brand, job})
	if err != nil {
		return "", "", fmt.Errorf("failed to render email: %w", err)
	}
	return subject, buf.String(), nil
}
