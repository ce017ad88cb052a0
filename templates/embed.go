// Package templates embeds the server-rendered HTML templates.
package templates

import "embed"

//go:embed *.html
var FS embed.FS
