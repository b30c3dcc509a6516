// Package web embeds the viewer's templates and static assets.
package web

import "embed"

//go:embed templates static
var Assets embed.FS
