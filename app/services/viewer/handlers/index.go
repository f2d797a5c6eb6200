package handlers

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"net/http"
	"net/url"
)

//go:embed assets/index.html
var indexHTML string

type index struct {
	page []byte
}

// newIndex renders the page once. It points the browser at the events
// stream of the node's public API.
func newIndex(build string, nodeURL string) (index, error) {
	u, err := url.Parse(nodeURL)
	if err != nil {
		return index{}, err
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/v1/events"

	tmpl, err := template.New("index").Parse(indexHTML)
	if err != nil {
		return index{}, err
	}

	data := struct {
		Build     string
		EventsURL string
	}{
		Build:     build,
		EventsURL: u.String(),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return index{}, err
	}

	return index{page: buf.Bytes()}, nil
}

func (ig index) handler(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	_, err := w.Write(ig.page)
	return err
}
