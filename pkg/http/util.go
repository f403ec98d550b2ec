package http

import (
	"time"

	xutil "SimPulse/pkg/util"
)

// Thin query-param helpers so handlers do not import pkg/util directly.

func ParseIntDefault(s string, def int) int { return xutil.ParseIntDefault(s, def) }

func ParseTime(s string) (time.Time, bool) { return xutil.ParseTime(s) }
