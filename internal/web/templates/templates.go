// Package templates embeds the HTML page layout, pages and HTMX partials.
package templates

import "embed"

//go:embed *.html pages/*.html partials/*.html
var FS embed.FS
