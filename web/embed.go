package web

import "embed"

// Content is the embedded browser client: the page shell, the canvas
// animation script, and its stylesheet.
//
//go:embed index.html app.js styles.css
var Content embed.FS
