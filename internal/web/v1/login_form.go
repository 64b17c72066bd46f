package v1

import (
	"html/template"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
)

// loginFormTemplate is deliberately bare; styling belongs to the UI.
var loginFormTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Login</title></head>
<body>
<form method="post" action="{{.Action}}">
{{if .Message}}<p role="alert">{{.Message}}</p>{{end}}
<label>Username <input name="username" autocomplete="username"></label>
<label>Password <input name="password" type="password" autocomplete="current-password"></label>
<input type="hidden" name="theme" id="theme">
<button type="submit">Login</button>
</form>
<script>
if (window.matchMedia && window.matchMedia("(prefers-color-scheme: dark)").matches) {
  document.getElementById("theme").value = "dark";
}
</script>
</body>
</html>
`))

type loginFormData struct {
	Action  string
	Message string
}

func renderLoginForm(c *gin.Context, status int, action, message string) {
	c.Render(status, render.HTML{
		Template: loginFormTemplate,
		Name:     "login",
		Data:     loginFormData{Action: action, Message: message},
	})
}
