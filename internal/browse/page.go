// Package browse keeps the provider list state for one browsing page.
package browse

// Page identifies a browsing scope. Time-frame and sort are remembered per page.
type Page string

const (
	PageCopyTraders              Page = "copyt"
	PageSignalProviders          Page = "signalp"
	PageConnectedCopyTraders     Page = "connectedCopyt"
	PageConnectedSignalProviders Page = "connectedSignalp"
)

// Options select the page.
type Options struct {
	CopyTradersOnly bool `json:"copyTradersOnly"`
	ConnectedOnly   bool `json:"connectedOnly"`
}

// PageFor maps options to their page.
func PageFor(o Options) Page {
	if o.ConnectedOnly {
		if o.CopyTradersOnly {
			return PageConnectedCopyTraders
		}
		return PageConnectedSignalProviders
	}
	if o.CopyTradersOnly {
		return PageCopyTraders
	}
	return PageSignalProviders
}

// Connected reports whether the page lists only connected providers.
func (p Page) Connected() bool {
	return p == PageConnectedCopyTraders || p == PageConnectedSignalProviders
}
