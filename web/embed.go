package web

import "embed"

// Pages embeds the HTML pages served verbatim.
//
//go:embed pages/*.html
var Pages embed.FS

// Static embeds CSS and JavaScript assets.
//
//go:embed static
var Static embed.FS
