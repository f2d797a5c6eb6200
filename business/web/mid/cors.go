package mid

import (
	"context"
	"net/http"
	"strings"

	"github.com/horcruxchain/horcrux/foundation/web"
)

// Methods and headers browsers may use against the node. The ledger API only
// reads with GET and changes state with POST.
var (
	corsMethods = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodOptions}, ", ")
	corsHeaders = strings.Join([]string{"Origin", "Accept", "Content-Type", "Content-Length", "Accept-Encoding"}, ", ")
)

// Cors allows pages served from the origin, such as the chain viewer, to
// call the node from a browser.
func Cors(origin string) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			hdr := w.Header()
			hdr.Set("Access-Control-Allow-Origin", origin)
			hdr.Set("Access-Control-Allow-Methods", corsMethods)
			hdr.Set("Access-Control-Allow-Headers", corsHeaders)
			hdr.Set("Access-Control-Max-Age", "86400")

			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
