package otcheck

import _ "embed"

// Version is the released version of otcheck.
//
//go:embed VERSION
var Version string
