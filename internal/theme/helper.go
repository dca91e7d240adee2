//
//  internal/theme/helper.go
//
//  Template functions that expose RequestInfo fields with short names, plus
//  the asset helper.  They keep HTML authors from poking through nested
//  structs.
//

package theme

import (
	"html/template"
	"net/url"

	"github.com/yanizio/cadence/internal/requestinfo"
)

// FuncMap returns the theme function map.  A nil asset func leaves paths
// unchanged (used when only checking syntax).
func FuncMap(asset func(string) string) template.FuncMap {
	if asset == nil {
		asset = func(s string) string { return s }
	}
	return template.FuncMap{
		"asset": asset,

		// Geo helpers
		"clientIP": func(ri *requestinfo.RequestInfo) string {
			if ri == nil || ri.Geo.IP == nil {
				return ""
			}
			return ri.Geo.IP.String()
		},
		"country": func(ri *requestinfo.RequestInfo) string {
			if ri == nil {
				return ""
			}
			return ri.Geo.CountryISO
		},

		// UA helpers
		"browser": func(ri *requestinfo.RequestInfo) string {
			if ri == nil {
				return ""
			}
			return ri.UA.Browser
		},
		"device": func(ri *requestinfo.RequestInfo) string {
			if ri == nil {
				return ""
			}
			return ri.UA.Device
		},
		"isBot": func(ri *requestinfo.RequestInfo) bool {
			return ri != nil && ri.UA.IsBot
		},

		// URL helper
		"url": func(ri *requestinfo.RequestInfo) *url.URL {
			if ri == nil {
				return nil
			}
			return ri.URL
		},
	}
}
