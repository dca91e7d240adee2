package analytics

import "github.com/yanizio/cadence/internal/requestinfo"

// PageViewFrom builds a PageView from the request metadata attached by
// requestinfo.Enrich.  A nil ri yields only page and title.
func PageViewFrom(ri *requestinfo.RequestInfo, title string) PageView {
	pv := PageView{Title: title}
	if ri == nil {
		return pv
	}
	if ri.URL != nil {
		pv.Page = ri.URL.Path
	}
	pv.UserAgent = ri.UA.Raw
	pv.Referrer = ri.Referrer
	pv.Browser = ri.UA.Browser
	pv.OS = ri.UA.OS
	pv.Device = ri.UA.Device
	pv.Country = ri.Geo.CountryISO
	return pv
}
