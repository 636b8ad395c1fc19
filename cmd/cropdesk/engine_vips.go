//go:build vips

package main

import (
	"github.com/example/cropdesk/internal/surface"
	"github.com/example/cropdesk/internal/surface/vipsx"
)

func init() {
	engines["vips"] = func(f surface.Format, q int) surface.Extractor {
		return vipsx.Extractor{Format: f, Quality: q}
	}
}
